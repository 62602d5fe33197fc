package orchestrator

import (
	"context"
	"fmt"

	"github.com/compozy/subsync/internal/domain"
	"github.com/compozy/subsync/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// runJournal records the progress of one multi-path run. It implements
// repository.PathProgress so repositories can report each path as it runs.
// Writes are best effort: a failed save is logged and never fails the run.
type runJournal struct {
	ctx       context.Context
	stateRepo repository.StateRepository
	state     *domain.RunState
	logger    *zap.Logger
}

var _ repository.PathProgress = (*runJournal)(nil)

// newRunJournal starts a journal session. A nil stateRepo keeps the journal in
// memory only.
func newRunJournal(
	ctx context.Context,
	stateRepo repository.StateRepository,
	kind domain.RunKind,
	repoPath string,
	paths []string,
	logger *zap.Logger,
) *runJournal {
	j := &runJournal{
		ctx:       context.WithoutCancel(ctx),
		stateRepo: stateRepo,
		state:     domain.NewRunState(uuid.New().String(), kind, repoPath, paths),
		logger:    logger.With(zap.String("kind", string(kind))),
	}
	j.logger = j.logger.With(zap.String("session_id", j.state.SessionID))
	j.save("initial")
	return j
}

// PathStarted marks path as running.
func (j *runJournal) PathStarted(path string) {
	j.state.MarkStepStarted(path)
	j.logger.Info("submodule step started", zap.String("path", path))
	j.save("step started")
}

// PathFinished marks path as completed, or as failed when err is not nil.
func (j *runJournal) PathFinished(path string, err error) {
	if err != nil {
		j.state.MarkStepFailed(path, err)
		j.logger.Warn("submodule step failed", zap.String("path", path), zap.Error(err))
	} else {
		j.state.MarkStepCompleted(path)
		j.logger.Info("submodule step completed", zap.String("path", path))
	}
	j.save("step finished")
}

// finish closes the session with the run's outcome and returns the final state.
func (j *runJournal) finish(err error) *domain.RunState {
	if err != nil {
		if j.state.Status != domain.RunStatusFailed {
			j.state.MarkFailed(err)
		}
	} else {
		j.state.MarkCompleted()
	}
	j.save("final")
	return j.state
}

func (j *runJournal) save(stage string) {
	if j.stateRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(j.ctx, JournalSaveTimeout)
	defer cancel()
	if err := j.stateRepo.Save(ctx, j.state); err != nil {
		j.logger.Warn("failed to save run journal", zap.String("stage", stage), zap.Error(err))
	}
}

// LoadRun returns the journal of sessionID, or the most recent one when
// sessionID is empty.
func LoadRun(ctx context.Context, stateRepo repository.StateRepository, sessionID string) (*domain.RunState, error) {
	if sessionID == "" {
		state, err := stateRepo.LoadLatest(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load latest run: %w", err)
		}
		return state, nil
	}
	state, err := stateRepo.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", sessionID, err)
	}
	return state, nil
}

// PruneRuns deletes the journal of every completed run and returns the pruned
// session IDs. Failed and unfinished runs are kept.
func PruneRuns(ctx context.Context, stateRepo repository.StateRepository) ([]string, error) {
	runs, err := stateRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	var pruned []string
	for _, run := range runs {
		if run.Status != domain.RunStatusCompleted {
			continue
		}
		if err := stateRepo.Delete(ctx, run.SessionID); err != nil {
			return pruned, fmt.Errorf("failed to delete run %s: %w", run.SessionID, err)
		}
		pruned = append(pruned, run.SessionID)
	}
	return pruned, nil
}
