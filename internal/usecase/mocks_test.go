package usecase

import (
	"context"
	"time"

	"github.com/compozy/subsync/internal/domain"
	"github.com/compozy/subsync/internal/repository"
	"github.com/stretchr/testify/mock"
)

// Mock for SubmoduleRepository
type mockSubmoduleRepository struct {
	mock.Mock
}

func (m *mockSubmoduleRepository) ListSubmodules(ctx context.Context) ([]domain.SubmoduleEntry, error) {
	args := m.Called(ctx)
	if entries := args.Get(0); entries != nil {
		return entries.([]domain.SubmoduleEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSubmoduleRepository) ListActiveSubmodules(ctx context.Context) ([]domain.SubmoduleEntry, error) {
	args := m.Called(ctx)
	if entries := args.Get(0); entries != nil {
		return entries.([]domain.SubmoduleEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSubmoduleRepository) InitSubmodules(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockSubmoduleRepository) InitSubmodule(ctx context.Context, entry domain.SubmoduleEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockSubmoduleRepository) UpdateSubmodules(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockSubmoduleRepository) UpdateSubmodule(ctx context.Context, entry domain.SubmoduleEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockSubmoduleRepository) ForceUpdateSubmodule(ctx context.Context, entry domain.SubmoduleEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockSubmoduleRepository) ResetSubmodulePaths(
	ctx context.Context,
	paths []string,
	progress repository.PathProgress,
) error {
	return m.Called(ctx, paths, progress).Error(0)
}

// Mock for GitRepository
type mockGitRepository struct {
	mock.Mock
}

func (m *mockGitRepository) BranchState(ctx context.Context) (domain.BranchState, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.BranchState), args.Error(1)
}

func (m *mockGitRepository) LastFetched(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if t := args.Get(0); t != nil {
		return t.(*time.Time), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGitRepository) Pull(ctx context.Context, remote string) error {
	return m.Called(ctx, remote).Error(0)
}

func (m *mockGitRepository) Fetch(ctx context.Context, remote string) error {
	return m.Called(ctx, remote).Error(0)
}
