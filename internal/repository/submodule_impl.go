package repository

import (
	"context"
	"fmt"

	"github.com/compozy/subsync/internal/domain"
	"github.com/compozy/subsync/internal/service"
	"go.uber.org/zap"
)

// submoduleRepository is the implementation of the SubmoduleRepository interface.
type submoduleRepository struct {
	path    string
	invoker service.Invoker
	logger  *zap.Logger
}

// NewSubmoduleRepository creates a SubmoduleRepository for the working tree at path.
func NewSubmoduleRepository(path string, invoker service.Invoker, logger *zap.Logger) SubmoduleRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &submoduleRepository{
		path:    path,
		invoker: invoker,
		logger:  logger,
	}
}

// ListSubmodules lists the top-level submodules. Recursion is disabled so the
// result matches what a plain `git status` shows for the containing repository.
// Exit code 128 means git could not parse the submodule configuration; that
// yields an empty list instead of an error.
func (r *submoduleRepository) ListSubmodules(ctx context.Context) ([]domain.SubmoduleEntry, error) {
	res, err := r.invoker.Invoke(ctx, service.Invocation{
		Args:         []string{"submodule", "status", "--"},
		Dir:          r.path,
		Label:        "listSubmodules",
		SuccessCodes: []int{0, service.ExitCodeFatal},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list submodules: %w", err)
	}
	if res.ExitCode == service.ExitCodeFatal {
		r.logger.Warn("unable to parse submodules, treating repository as having none",
			zap.String("repo", r.path),
			zap.String("stderr", res.Stderr),
		)
		return []domain.SubmoduleEntry{}, nil
	}
	return ParseSubmoduleStatus(res.Stdout), nil
}

// ListActiveSubmodules lists the submodules that git could describe.
func (r *submoduleRepository) ListActiveSubmodules(ctx context.Context) ([]domain.SubmoduleEntry, error) {
	entries, err := r.ListSubmodules(ctx)
	if err != nil {
		return nil, err
	}
	return domain.ActiveSubmodules(entries), nil
}

// InitSubmodules initializes every submodule.
func (r *submoduleRepository) InitSubmodules(ctx context.Context) error {
	return r.run(ctx, "initSubmodules", "submodule", "init", "--all")
}

// InitSubmodule initializes a single submodule.
func (r *submoduleRepository) InitSubmodule(ctx context.Context, entry domain.SubmoduleEntry) error {
	if err := ValidateSubmodulePath(entry.Path); err != nil {
		return err
	}
	return r.run(ctx, "initSubmodule", "submodule", "init", "--", entry.Path)
}

// UpdateSubmodules recursively updates every submodule without forcing.
func (r *submoduleRepository) UpdateSubmodules(ctx context.Context) error {
	return r.run(ctx, "updateSubmodules", "submodule", "update", "--recursive", "--all")
}

// UpdateSubmodule recursively updates a single submodule without forcing.
func (r *submoduleRepository) UpdateSubmodule(ctx context.Context, entry domain.SubmoduleEntry) error {
	if err := ValidateSubmodulePath(entry.Path); err != nil {
		return err
	}
	return r.run(ctx, "updateSubmodule", "submodule", "update", "--recursive", "--", entry.Path)
}

// ForceUpdateSubmodule recursively updates a single submodule and throws away
// any local changes in its working tree. This cannot be undone.
func (r *submoduleRepository) ForceUpdateSubmodule(ctx context.Context, entry domain.SubmoduleEntry) error {
	if err := ValidateSubmodulePath(entry.Path); err != nil {
		return err
	}
	return r.run(ctx, "forceUpdateSubmodule", "submodule", "update", "--recursive", "--force", "--", entry.Path)
}

// ResetSubmodulePaths updates each path in order, one process at a time. It
// stops at the first failure, an invalid path included, and returns it; paths
// updated before the failure stay updated.
func (r *submoduleRepository) ResetSubmodulePaths(ctx context.Context, paths []string, progress PathProgress) error {
	for _, p := range paths {
		if progress != nil {
			progress.PathStarted(p)
		}
		err := ValidateSubmodulePath(p)
		if err == nil {
			err = r.run(ctx, "updateSubmodule", "submodule", "update", "--recursive", "--", p)
		}
		if progress != nil {
			progress.PathFinished(p, err)
		}
		if err != nil {
			return fmt.Errorf("reset submodule path %q: %w", p, err)
		}
	}
	return nil
}

func (r *submoduleRepository) run(ctx context.Context, label string, args ...string) error {
	_, err := r.invoker.Invoke(ctx, service.Invocation{
		Args:  args,
		Dir:   r.path,
		Label: label,
	})
	return err
}
