package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/compozy/subsync/internal/config"
	"github.com/compozy/subsync/internal/logger"
	"github.com/compozy/subsync/internal/orchestrator"
	"github.com/compozy/subsync/internal/repository"
	"github.com/compozy/subsync/internal/service"
	"go.uber.org/zap"
)

// container holds all the dependencies for the application.
type container struct {
	cfg    *config.Config
	logger *zap.Logger

	fsRepo        repository.FileSystemRepository
	invoker       service.Invoker
	submoduleRepo repository.SubmoduleRepository
	stateRepo     repository.StateRepository

	resetOrch       *orchestrator.ResetOrchestrator
	forceUpdateOrch *orchestrator.ForceUpdateOrchestrator
}

// newContainer creates a new container with all the dependencies.
func newContainer(opts rootOptions) (*container, error) {
	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.repoPath != "" {
		cfg.RepoPath = opts.repoPath
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	log, err := logger.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}
	repoPath, err := filepath.Abs(cfg.RepoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository path: %w", err)
	}

	fsRepo := repository.NewOsFileSystem()
	invoker := service.NewGitInvoker(cfg.GitPath, cfg.CommandTimeout, log)
	submoduleRepo := repository.NewSubmoduleRepository(repoPath, invoker, log)

	// The journal lives inside the repository unless configured elsewhere
	stateDir := cfg.StateDir
	if !filepath.IsAbs(stateDir) {
		stateDir = filepath.Join(repoPath, stateDir)
	}
	stateRepo := repository.NewJSONStateRepository(fsRepo, stateDir, log)
	var journalRepo repository.StateRepository
	if cfg.Journal {
		journalRepo = stateRepo
	}

	return &container{
		cfg:             cfg,
		logger:          log,
		fsRepo:          fsRepo,
		invoker:         invoker,
		submoduleRepo:   submoduleRepo,
		stateRepo:       stateRepo,
		resetOrch:       orchestrator.NewResetOrchestrator(submoduleRepo, journalRepo, repoPath, log),
		forceUpdateOrch: orchestrator.NewForceUpdateOrchestrator(submoduleRepo, journalRepo, repoPath, log),
	}, nil
}

// newSyncOrchestrator opens the repository with go-git. It is only built by the
// sync command so the submodule commands work even where go-git cannot open
// the repository.
func (c *container) newSyncOrchestrator() (*orchestrator.SyncOrchestrator, error) {
	gitRepo, err := repository.NewGitRepository(c.cfg.RepoPath, c.cfg.GitToken, c.invoker, c.fsRepo, c.logger)
	if err != nil {
		return nil, err
	}
	return orchestrator.NewSyncOrchestrator(gitRepo, c.logger), nil
}
