package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/compozy/subsync/internal/domain"
	"github.com/compozy/subsync/internal/repository"
	"github.com/compozy/subsync/internal/usecase"
	"go.uber.org/zap"
)

// SyncConfig contains configuration for the sync workflow.
type SyncConfig struct {
	DryRun bool
}

// SyncResult reports what the sync workflow decided and whether it acted.
type SyncResult struct {
	State     domain.BranchState  `json:"state"`
	Decision  domain.SyncDecision `json:"decision"`
	Performed bool                `json:"performed"`
}

// SyncOrchestrator resolves the pull-or-fetch decision for the current branch
// and performs it. Only one network action runs at a time per orchestrator;
// while one is in flight every decision comes back disabled.
type SyncOrchestrator struct {
	gitRepo  repository.GitRepository
	logger   *zap.Logger
	now      func() time.Time
	inFlight atomic.Bool
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(gitRepo repository.GitRepository, logger *zap.Logger) *SyncOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncOrchestrator{gitRepo: gitRepo, logger: logger, now: time.Now}
}

// Decide reads the branch state and resolves the sync action without acting.
func (o *SyncOrchestrator) Decide(ctx context.Context) (*SyncResult, error) {
	uc := &usecase.SelectSyncActionUseCase{GitRepo: o.gitRepo, Now: o.now}
	state, decision, err := uc.Execute(ctx, o.inFlight.Load())
	if err != nil {
		return nil, err
	}
	return &SyncResult{State: state, Decision: decision}, nil
}

// Execute resolves the sync action and performs it unless it is disabled or
// cfg.DryRun is set.
func (o *SyncOrchestrator) Execute(ctx context.Context, cfg SyncConfig) (*SyncResult, error) {
	result, err := o.Decide(ctx)
	if err != nil {
		return nil, err
	}
	if !result.Decision.Enabled || cfg.DryRun {
		o.logger.Info("sync action not performed",
			zap.String("action", string(result.Decision.Action)),
			zap.Bool("enabled", result.Decision.Enabled),
			zap.Bool("dry_run", cfg.DryRun))
		return result, nil
	}
	if !o.inFlight.CompareAndSwap(false, true) {
		result.Decision.Enabled = false
		return result, nil
	}
	defer o.inFlight.Store(false)
	ctx, cancel := context.WithTimeout(ctx, SyncTimeout)
	defer cancel()
	remote := result.State.RemoteName
	switch result.Decision.Action {
	case domain.SyncActionPull:
		err = o.gitRepo.Pull(ctx, remote)
	case domain.SyncActionFetch:
		err = o.gitRepo.Fetch(ctx, remote)
	default:
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("%s %s failed: %w", result.Decision.Action, remote, err)
	}
	result.Performed = true
	o.logger.Info("sync action performed",
		zap.String("action", string(result.Decision.Action)),
		zap.String("remote", remote))
	return result, nil
}
