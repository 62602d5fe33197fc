package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/compozy/subsync/internal/domain"
	"github.com/compozy/subsync/internal/repository"
)

// ListSubmodulesUseCase contains the logic for the list command.
type ListSubmodulesUseCase struct {
	SubmoduleRepo repository.SubmoduleRepository
	ActiveOnly    bool
	// SortByVersion orders entries by their describe version, lowest first.
	// Entries without a version keep listing order after the versioned ones.
	SortByVersion bool
}

// Execute runs the use case.
func (uc *ListSubmodulesUseCase) Execute(ctx context.Context) ([]domain.SubmoduleEntry, error) {
	var (
		entries []domain.SubmoduleEntry
		err     error
	)
	if uc.ActiveOnly {
		entries, err = uc.SubmoduleRepo.ListActiveSubmodules(ctx)
	} else {
		entries, err = uc.SubmoduleRepo.ListSubmodules(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list submodules: %w", err)
	}
	if uc.SortByVersion {
		sortByVersion(entries)
	}
	return entries, nil
}

func sortByVersion(entries []domain.SubmoduleEntry) {
	versions := make(map[string]*domain.Version, len(entries))
	for _, e := range entries {
		if v, err := e.Version(); err == nil {
			versions[e.Path] = v
		}
	}
	slices.SortStableFunc(entries, func(a, b domain.SubmoduleEntry) int {
		va, vb := versions[a.Path], versions[b.Path]
		switch {
		case va == nil && vb == nil:
			return 0
		case va == nil:
			return 1
		case vb == nil:
			return -1
		}
		return va.Compare(vb)
	})
}
