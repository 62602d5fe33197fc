package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/compozy/subsync/internal/domain"
	"github.com/compozy/subsync/internal/repository"
	"github.com/compozy/subsync/internal/usecase"
	"go.uber.org/zap"
)

// ErrConfirmationRequired is returned when conflicted submodules exist but the
// user did not agree to discard their local changes.
var ErrConfirmationRequired = errors.New("confirmation required to discard changes in conflicted submodules")

// Confirmer asks whether local changes in the given submodules may be discarded.
type Confirmer interface {
	Confirm(ctx context.Context, conflicted []domain.SubmoduleEntry) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, conflicted []domain.SubmoduleEntry) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, conflicted []domain.SubmoduleEntry) (bool, error) {
	return f(ctx, conflicted)
}

// ForceUpdateOrchestrator force-updates every conflicted submodule once the
// user has confirmed.
type ForceUpdateOrchestrator struct {
	submoduleRepo repository.SubmoduleRepository
	stateRepo     repository.StateRepository
	repoPath      string
	logger        *zap.Logger
}

// NewForceUpdateOrchestrator creates a new force-update orchestrator. stateRepo
// may be nil to disable the on-disk journal.
func NewForceUpdateOrchestrator(
	submoduleRepo repository.SubmoduleRepository,
	stateRepo repository.StateRepository,
	repoPath string,
	logger *zap.Logger,
) *ForceUpdateOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForceUpdateOrchestrator{
		submoduleRepo: submoduleRepo,
		stateRepo:     stateRepo,
		repoPath:      repoPath,
		logger:        logger,
	}
}

// Execute lists the conflicted submodules and, after confirmation, force-updates
// them in listing order. It returns a nil run when nothing was conflicted or the
// user declined.
func (o *ForceUpdateOrchestrator) Execute(ctx context.Context, confirmer Confirmer) (*domain.RunState, error) {
	ctx, cancel := context.WithTimeout(ctx, WorkflowTimeout)
	defer cancel()
	uc := &usecase.CollectConflictedUseCase{SubmoduleRepo: o.submoduleRepo}
	conflicted, err := uc.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if len(conflicted) == 0 {
		o.logger.Info("no conflicted submodules")
		return nil, nil
	}
	if confirmer == nil {
		return nil, ErrConfirmationRequired
	}
	ok, err := confirmer.Confirm(ctx, conflicted)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm force update: %w", err)
	}
	if !ok {
		return nil, ErrConfirmationRequired
	}
	paths := make([]string, 0, len(conflicted))
	for _, e := range conflicted {
		paths = append(paths, e.Path)
	}
	journal := newRunJournal(ctx, o.stateRepo, domain.RunKindForceUpdate, o.repoPath, paths, o.logger)
	for _, entry := range conflicted {
		journal.PathStarted(entry.Path)
		err := o.submoduleRepo.ForceUpdateSubmodule(ctx, entry)
		journal.PathFinished(entry.Path, err)
		if err != nil {
			err = fmt.Errorf("force update submodule %q: %w", entry.Path, err)
			return journal.finish(err), err
		}
	}
	return journal.finish(nil), nil
}
