package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/compozy/subsync/internal/domain"
	"github.com/compozy/subsync/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const statusOutput = " 1eaabe34fc6f486367a176207420378f587d3b48 git (v2.16.0-rc0)\n" +
	"-0000000000000000000000000000000000000000 lib\n" +
	"U2222222222222222222222222222222222222222 vendor/b (v1.0.0)\n"

func TestSubmoduleRepository_ListSubmodules(t *testing.T) {
	ctx := context.Background()
	t.Run("Should run status non-recursively and parse the output", func(t *testing.T) {
		inv := new(mockInvoker)
		repo := NewSubmoduleRepository("/repo", inv, nil)
		inv.On("Invoke", ctx, mock.MatchedBy(func(i service.Invocation) bool {
			return i.Dir == "/repo" &&
				i.Label == "listSubmodules" &&
				assert.ObjectsAreEqual([]string{"submodule", "status", "--"}, i.Args) &&
				assert.ObjectsAreEqual([]int{0, 128}, i.SuccessCodes)
		})).Return(&service.Result{Stdout: statusOutput}, nil)
		entries, err := repo.ListSubmodules(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "git", entries[0].Path)
		assert.Equal(t, "lib", entries[1].Path)
		assert.Equal(t, domain.SubmoduleStateConflicted, entries[2].State)
		inv.AssertExpectations(t)
	})
	t.Run("Should return empty list when git exits with 128", func(t *testing.T) {
		inv := new(mockInvoker)
		repo := NewSubmoduleRepository("/repo", inv, nil)
		inv.On("Invoke", ctx, invocation("submodule", "status", "--")).
			Return(&service.Result{ExitCode: 128, Stderr: "fatal: no submodule mapping found"}, nil)
		entries, err := repo.ListSubmodules(ctx)
		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})
	t.Run("Should fail with the exit code for other failures", func(t *testing.T) {
		inv := new(mockInvoker)
		repo := NewSubmoduleRepository("/repo", inv, nil)
		inv.On("Invoke", ctx, invocation("submodule", "status", "--")).
			Return(nil, &service.ProcessError{Label: "listSubmodules", ExitCode: 1, Stderr: "boom"})
		entries, err := repo.ListSubmodules(ctx)
		require.Error(t, err)
		assert.Nil(t, entries)
		assert.Equal(t, 1, service.ExitCodeOf(err))
		assert.Contains(t, err.Error(), "exit code 1")
	})
}

func TestSubmoduleRepository_ListActiveSubmodules(t *testing.T) {
	ctx := context.Background()
	t.Run("Should return the described subsequence of the listing", func(t *testing.T) {
		inv := new(mockInvoker)
		repo := NewSubmoduleRepository("/repo", inv, nil)
		inv.On("Invoke", ctx, invocation("submodule", "status", "--")).
			Return(&service.Result{Stdout: statusOutput}, nil).Twice()
		all, err := repo.ListSubmodules(ctx)
		require.NoError(t, err)
		active, err := repo.ListActiveSubmodules(ctx)
		require.NoError(t, err)
		var want []domain.SubmoduleEntry
		for _, e := range all {
			if e.Describe != "" {
				want = append(want, e)
			}
		}
		assert.Equal(t, want, active)
		require.Len(t, active, 2)
		assert.Equal(t, "vendor/b", active[1].Path)
	})
	t.Run("Should propagate listing failures", func(t *testing.T) {
		inv := new(mockInvoker)
		repo := NewSubmoduleRepository("/repo", inv, nil)
		inv.On("Invoke", ctx, invocation("submodule", "status", "--")).
			Return(nil, &service.ProcessError{ExitCode: 2})
		_, err := repo.ListActiveSubmodules(ctx)
		assert.Equal(t, 2, service.ExitCodeOf(err))
	})
}

func TestSubmoduleRepository_Mutations(t *testing.T) {
	ctx := context.Background()
	entry := domain.NewSubmoduleEntry("1eaabe34fc6f486367a176207420378f587d3b48", "vendor/a", "v1.0.0", domain.SubmoduleStateConflicted)
	cases := []struct {
		name  string
		label string
		args  []string
		call  func(SubmoduleRepository) error
	}{
		{
			name:  "init all",
			label: "initSubmodules",
			args:  []string{"submodule", "init", "--all"},
			call:  func(r SubmoduleRepository) error { return r.InitSubmodules(ctx) },
		},
		{
			name:  "init one",
			label: "initSubmodule",
			args:  []string{"submodule", "init", "--", "vendor/a"},
			call:  func(r SubmoduleRepository) error { return r.InitSubmodule(ctx, entry) },
		},
		{
			name:  "update all",
			label: "updateSubmodules",
			args:  []string{"submodule", "update", "--recursive", "--all"},
			call:  func(r SubmoduleRepository) error { return r.UpdateSubmodules(ctx) },
		},
		{
			name:  "update one",
			label: "updateSubmodule",
			args:  []string{"submodule", "update", "--recursive", "--", "vendor/a"},
			call:  func(r SubmoduleRepository) error { return r.UpdateSubmodule(ctx, entry) },
		},
		{
			name:  "force update one",
			label: "forceUpdateSubmodule",
			args:  []string{"submodule", "update", "--recursive", "--force", "--", "vendor/a"},
			call:  func(r SubmoduleRepository) error { return r.ForceUpdateSubmodule(ctx, entry) },
		},
	}
	for _, tc := range cases {
		t.Run("Should issue "+tc.name+" with only exit code 0 accepted", func(t *testing.T) {
			inv := new(mockInvoker)
			repo := NewSubmoduleRepository("/repo", inv, nil)
			inv.On("Invoke", ctx, mock.MatchedBy(func(i service.Invocation) bool {
				return i.Dir == "/repo" && i.Label == tc.label &&
					assert.ObjectsAreEqual(tc.args, i.Args) && len(i.SuccessCodes) == 0
			})).Return(&service.Result{}, nil).Once()
			require.NoError(t, tc.call(repo))
			inv.AssertExpectations(t)
		})
		t.Run("Should propagate failure of "+tc.name, func(t *testing.T) {
			inv := new(mockInvoker)
			repo := NewSubmoduleRepository("/repo", inv, nil)
			inv.On("Invoke", ctx, invocation(tc.args...)).
				Return(nil, &service.ProcessError{Label: tc.label, ExitCode: 128})
			err := tc.call(repo)
			require.Error(t, err)
			assert.Equal(t, 128, service.ExitCodeOf(err))
		})
	}
	t.Run("Should reject invalid paths without invoking git", func(t *testing.T) {
		inv := new(mockInvoker)
		repo := NewSubmoduleRepository("/repo", inv, nil)
		bad := domain.NewSubmoduleEntry("", "../outside", "", domain.SubmoduleStateUnchanged)
		assert.Error(t, repo.UpdateSubmodule(ctx, bad))
		assert.Error(t, repo.ForceUpdateSubmodule(ctx, bad))
		assert.Error(t, repo.InitSubmodule(ctx, bad))
		inv.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
	})
}

func TestSubmoduleRepository_ResetSubmodulePaths(t *testing.T) {
	ctx := context.Background()
	t.Run("Should update each path sequentially in order", func(t *testing.T) {
		inv := new(mockInvoker)
		repo := NewSubmoduleRepository("/repo", inv, nil)
		var order []string
		for _, p := range []string{"a", "b", "c"} {
			p := p
			inv.On("Invoke", ctx, invocation("submodule", "update", "--recursive", "--", p)).
				Run(func(mock.Arguments) { order = append(order, p) }).
				Return(&service.Result{}, nil).Once()
		}
		progress := &recordingProgress{}
		err := repo.ResetSubmodulePaths(ctx, []string{"a", "b", "c"}, progress)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, order)
		assert.Equal(t, []string{"start:a", "done:a", "start:b", "done:b", "start:c", "done:c"}, progress.events)
		inv.AssertNumberOfCalls(t, "Invoke", 3)
	})
	t.Run("Should stop at the first failure and name the failing path", func(t *testing.T) {
		inv := new(mockInvoker)
		repo := NewSubmoduleRepository("/repo", inv, nil)
		inv.On("Invoke", ctx, invocation("submodule", "update", "--recursive", "--", "a")).
			Return(&service.Result{}, nil).Once()
		inv.On("Invoke", ctx, invocation("submodule", "update", "--recursive", "--", "b")).
			Return(nil, &service.ProcessError{Label: "updateSubmodule", ExitCode: 1}).Once()
		progress := &recordingProgress{}
		err := repo.ResetSubmodulePaths(ctx, []string{"a", "b", "c"}, progress)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"b"`)
		assert.Equal(t, 1, service.ExitCodeOf(err))
		assert.Equal(t, []string{"start:a", "done:a", "start:b", "fail:b"}, progress.events)
		inv.AssertNumberOfCalls(t, "Invoke", 2)
		inv.AssertNotCalled(t, "Invoke", ctx, invocation("submodule", "update", "--recursive", "--", "c"))
	})
	t.Run("Should apply the paths before an invalid one", func(t *testing.T) {
		inv := new(mockInvoker)
		repo := NewSubmoduleRepository("/repo", inv, nil)
		inv.On("Invoke", ctx, invocation("submodule", "update", "--recursive", "--", "a")).
			Return(&service.Result{}, nil).Once()
		inv.On("Invoke", ctx, invocation("submodule", "update", "--recursive", "--", "b")).
			Return(&service.Result{}, nil).Once()
		progress := &recordingProgress{}
		err := repo.ResetSubmodulePaths(ctx, []string{"a", "b", "../escape", "d"}, progress)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"../escape"`)
		assert.Equal(t, []string{"start:a", "done:a", "start:b", "done:b", "start:../escape", "fail:../escape"}, progress.events)
		inv.AssertNumberOfCalls(t, "Invoke", 2)
	})
	t.Run("Should accept a nil progress and an empty path list", func(t *testing.T) {
		inv := new(mockInvoker)
		repo := NewSubmoduleRepository("/repo", inv, nil)
		require.NoError(t, repo.ResetSubmodulePaths(ctx, nil, nil))
		inv.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
	})
	t.Run("Should keep errors.As working through the wrap", func(t *testing.T) {
		inv := new(mockInvoker)
		repo := NewSubmoduleRepository("/repo", inv, nil)
		inv.On("Invoke", ctx, invocation("submodule", "update", "--recursive", "--", "a")).
			Return(nil, &service.ProcessError{ExitCode: 1})
		err := repo.ResetSubmodulePaths(ctx, []string{"a"}, nil)
		var pe *service.ProcessError
		assert.True(t, errors.As(err, &pe))
	})
}

func TestValidateSubmodulePath(t *testing.T) {
	assert.NoError(t, ValidateSubmodulePath("vendor/a"))
	assert.NoError(t, ValidateSubmodulePath("-weird-name"))
	assert.Error(t, ValidateSubmodulePath(""))
	assert.Error(t, ValidateSubmodulePath("   "))
	assert.Error(t, ValidateSubmodulePath("/abs/path"))
	assert.Error(t, ValidateSubmodulePath("../up"))
	assert.Error(t, ValidateSubmodulePath("a/../../up"))
	assert.Error(t, ValidateSubmodulePath("bad\x00path"))
}
