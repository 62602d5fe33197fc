package repository

import (
	"context"
	"time"

	"github.com/compozy/subsync/internal/domain"
)

// GitRepository defines the branch level operations the sync action needs.
type GitRepository interface {
	BranchState(ctx context.Context) (domain.BranchState, error)
	LastFetched(ctx context.Context) (*time.Time, error)
	Pull(ctx context.Context, remote string) error
	Fetch(ctx context.Context, remote string) error
}
