package orchestrator

import (
	"context"
	"sort"
	"time"

	"github.com/compozy/subsync/internal/domain"
	"github.com/compozy/subsync/internal/repository"
	"github.com/stretchr/testify/mock"
)

type mockSubmoduleRepository struct{ mock.Mock }

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

type mockGitRepository struct{ mock.Mock }

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

// memoryStateRepository keeps a copy of every saved state so tests can see the
// journal as it was at each save.
type memoryStateRepository struct {
	saves  []domain.RunState
	states map[string]*domain.RunState
	err    error
}

func newMemoryStateRepository() *memoryStateRepository {
	return &memoryStateRepository{states: map[string]*domain.RunState{}}
}

func (r *memoryStateRepository) Save(_ context.Context, state *domain.RunState) error {
	if r.err != nil {
		return r.err
	}
	snapshot := *state
	snapshot.Steps = append([]domain.StepRecord(nil), state.Steps...)
	r.saves = append(r.saves, snapshot)
	r.states[state.SessionID] = &snapshot
	return nil
}
func (r *memoryStateRepository) Load(_ context.Context, sessionID string) (*domain.RunState, error) {
	if s, ok := r.states[sessionID]; ok {
		return s, nil
	}
	return nil, errStateNotFound
}
func (r *memoryStateRepository) LoadLatest(_ context.Context) (*domain.RunState, error) {
	if len(r.saves) == 0 {
		return nil, errStateNotFound
	}
	last := r.saves[len(r.saves)-1]
	return &last, nil
}
func (r *memoryStateRepository) List(_ context.Context) ([]*domain.RunState, error) {
	if r.err != nil {
		return nil, r.err
	}
	runs := make([]*domain.RunState, 0, len(r.states))
	for _, s := range r.states {
		runs = append(runs, s)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].UpdatedAt.After(runs[j].UpdatedAt) })
	return runs, nil
}
func (r *memoryStateRepository) Delete(_ context.Context, sessionID string) error {
	if _, ok := r.states[sessionID]; !ok {
		return errStateNotFound
	}
	delete(r.states, sessionID)
	return nil
}
