package orchestrator

import (
	"context"

	"github.com/compozy/subsync/internal/domain"
	"github.com/compozy/subsync/internal/repository"
	"go.uber.org/zap"
)

// ResetOrchestrator resets a list of submodule paths back to their recorded
// commits, journaling each path.
type ResetOrchestrator struct {
	submoduleRepo repository.SubmoduleRepository
	stateRepo     repository.StateRepository
	repoPath      string
	logger        *zap.Logger
}

// NewResetOrchestrator creates a new reset orchestrator. stateRepo may be nil
// to disable the on-disk journal.
func NewResetOrchestrator(
	submoduleRepo repository.SubmoduleRepository,
	stateRepo repository.StateRepository,
	repoPath string,
	logger *zap.Logger,
) *ResetOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResetOrchestrator{
		submoduleRepo: submoduleRepo,
		stateRepo:     stateRepo,
		repoPath:      repoPath,
		logger:        logger,
	}
}

// Execute updates every path in order and stops at the first failure. Paths
// updated before the failure stay updated; the returned run records which.
func (o *ResetOrchestrator) Execute(ctx context.Context, paths []string) (*domain.RunState, error) {
	ctx, cancel := context.WithTimeout(ctx, WorkflowTimeout)
	defer cancel()
	journal := newRunJournal(ctx, o.stateRepo, domain.RunKindResetPaths, o.repoPath, paths, o.logger)
	err := o.submoduleRepo.ResetSubmodulePaths(ctx, paths, journal)
	return journal.finish(err), err
}
