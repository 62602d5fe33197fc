package repository

import (
	"context"

	"github.com/compozy/subsync/internal/domain"
)

// PathProgress is notified around each path of a multi-path operation.
// err is nil when the path is about to start or finished successfully.
type PathProgress interface {
	PathStarted(path string)
	PathFinished(path string, err error)
}

// SubmoduleRepository defines the submodule operations built on the git CLI.
type SubmoduleRepository interface {
	ListSubmodules(ctx context.Context) ([]domain.SubmoduleEntry, error)
	ListActiveSubmodules(ctx context.Context) ([]domain.SubmoduleEntry, error)
	InitSubmodules(ctx context.Context) error
	InitSubmodule(ctx context.Context, entry domain.SubmoduleEntry) error
	UpdateSubmodules(ctx context.Context) error
	UpdateSubmodule(ctx context.Context, entry domain.SubmoduleEntry) error
	ForceUpdateSubmodule(ctx context.Context, entry domain.SubmoduleEntry) error
	ResetSubmodulePaths(ctx context.Context, paths []string, progress PathProgress) error
}
