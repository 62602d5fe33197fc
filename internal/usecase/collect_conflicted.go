package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/subsync/internal/domain"
	"github.com/compozy/subsync/internal/repository"
)

// CollectConflictedUseCase finds the submodules that need a force update.
type CollectConflictedUseCase struct {
	SubmoduleRepo repository.SubmoduleRepository
}

// Execute returns the conflicted submodules in listing order.
func (uc *CollectConflictedUseCase) Execute(ctx context.Context) ([]domain.SubmoduleEntry, error) {
	entries, err := uc.SubmoduleRepo.ListSubmodules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list submodules: %w", err)
	}
	return domain.ConflictedSubmodules(entries), nil
}
