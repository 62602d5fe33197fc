package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/compozy/subsync/internal/domain"
	"github.com/compozy/subsync/internal/service"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultRemoteName is used when the current branch has no configured remote.
const DefaultRemoteName = "origin"

// gitRepository is the implementation of the GitRepository interface.
type gitRepository struct {
	repo    *git.Repository
	root    string
	gitDir  string
	token   string
	invoker service.Invoker
	fs      afero.Fs
	logger  *zap.Logger
}

// NewGitRepository opens the repository containing path.
func NewGitRepository(
	path string,
	token string,
	invoker service.Invoker,
	fs afero.Fs,
	logger *zap.Logger,
) (GitRepository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	root := path
	if w, err := repo.Worktree(); err == nil {
		root = w.Filesystem.Root()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gitRepository{
		repo:    repo,
		root:    root,
		gitDir:  resolveGitDir(repo, root),
		token:   token,
		invoker: invoker,
		fs:      fs,
		logger:  logger,
	}, nil
}

// BranchState reports the tip, the remote and the divergence from upstream.
func (r *gitRepository) BranchState(ctx context.Context) (domain.BranchState, error) {
	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return domain.BranchState{}, fmt.Errorf("failed to get HEAD: %w", err)
	}
	cfg, err := r.repo.Config()
	if err != nil {
		return domain.BranchState{}, fmt.Errorf("failed to get config: %w", err)
	}
	if head.Type() != plumbing.SymbolicReference {
		return domain.BranchState{
			Tip:        domain.TipStateDetached,
			RemoteName: defaultRemote(cfg.Remotes),
		}, nil
	}
	branch := head.Target().Short()
	state := domain.BranchState{Branch: branch, Tip: domain.TipStateValid}
	hasUpstream := false
	if b, ok := cfg.Branches[branch]; ok && b.Remote != "" {
		state.RemoteName = b.Remote
		hasUpstream = b.Merge != ""
	} else {
		state.RemoteName = defaultRemote(cfg.Remotes)
	}
	if _, err := r.repo.Reference(head.Target(), true); err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			state.Tip = domain.TipStateUnborn
			return state, nil
		}
		return domain.BranchState{}, fmt.Errorf("failed to resolve %s: %w", head.Target(), err)
	}
	if !hasUpstream {
		return state, nil
	}
	ab, err := r.aheadBehind(ctx)
	if err != nil {
		return domain.BranchState{}, err
	}
	state.AheadBehind = ab
	return state, nil
}

// aheadBehind asks git for the divergence from the upstream branch. It returns
// nil when git cannot resolve the upstream, e.g. before it was ever fetched.
func (r *gitRepository) aheadBehind(ctx context.Context) (*domain.AheadBehind, error) {
	res, err := r.invoker.Invoke(ctx, service.Invocation{
		Args:         []string{"rev-list", "--count", "--left-right", "@{upstream}...HEAD", "--"},
		Dir:          r.root,
		Label:        "getAheadBehind",
		SuccessCodes: []int{0, service.ExitCodeFatal},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get ahead/behind: %w", err)
	}
	if res.ExitCode == service.ExitCodeFatal {
		return nil, nil
	}
	return parseAheadBehind(res.Stdout)
}

// parseAheadBehind parses "<behind>\t<ahead>" as printed by
// `rev-list --count --left-right @{upstream}...HEAD`.
func parseAheadBehind(out string) (*domain.AheadBehind, error) {
	left, right, found := strings.Cut(strings.TrimSpace(out), "\t")
	if !found {
		return nil, fmt.Errorf("git rev-list output is missing a tab: %q", out)
	}
	behind, err := strconv.Atoi(left)
	if err != nil {
		return nil, fmt.Errorf("invalid behind count %q: %w", left, err)
	}
	ahead, err := strconv.Atoi(right)
	if err != nil {
		return nil, fmt.Errorf("invalid ahead count %q: %w", right, err)
	}
	return &domain.AheadBehind{Ahead: ahead, Behind: behind}, nil
}

// LastFetched returns the modification time of FETCH_HEAD, or nil when the
// repository was never fetched.
func (r *gitRepository) LastFetched(_ context.Context) (*time.Time, error) {
	info, err := r.fs.Stat(r.fetchHeadPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat FETCH_HEAD: %w", err)
	}
	t := info.ModTime()
	return &t, nil
}

// Pull fast-forwards the current branch from its upstream on remote. The
// upstream comes from branch.<name>.merge; without one go-git pulls the
// remote's HEAD.
func (r *gitRepository) Pull(ctx context.Context, remote string) error {
	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	upstream, err := r.upstreamRef()
	if err != nil {
		return err
	}
	r.logger.Info("pulling", zap.String("remote", remote), zap.String("upstream", upstream.String()))
	err = w.PullContext(ctx, &git.PullOptions{
		RemoteName:    remote,
		ReferenceName: upstream,
		Auth:          r.getAuth(),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull from %s: %w", remote, err)
	}
	r.markFetched()
	return nil
}

// upstreamRef returns the merge ref configured for the checked out branch, or
// an empty name when HEAD is detached or the branch tracks nothing.
func (r *gitRepository) upstreamRef() (plumbing.ReferenceName, error) {
	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	if head.Type() != plumbing.SymbolicReference {
		return "", nil
	}
	cfg, err := r.repo.Config()
	if err != nil {
		return "", fmt.Errorf("failed to get config: %w", err)
	}
	if b, ok := cfg.Branches[head.Target().Short()]; ok {
		return b.Merge, nil
	}
	return "", nil
}

// Fetch updates the remote tracking branches.
func (r *gitRepository) Fetch(ctx context.Context, remote string) error {
	r.logger.Info("fetching", zap.String("remote", remote))
	err := r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remote,
		Auth:       r.getAuth(),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to fetch from %s: %w", remote, err)
	}
	r.markFetched()
	return nil
}

// markFetched bumps the FETCH_HEAD timestamp, which go-git does not write.
// A repository that git never fetched keeps having no FETCH_HEAD.
func (r *gitRepository) markFetched() {
	now := time.Now()
	if err := r.fs.Chtimes(r.fetchHeadPath(), now, now); err != nil && !os.IsNotExist(err) {
		r.logger.Debug("failed to touch FETCH_HEAD", zap.Error(err))
	}
}

func (r *gitRepository) fetchHeadPath() string {
	return filepath.Join(r.gitDir, "FETCH_HEAD")
}

// resolveGitDir returns the directory holding the repository's metadata. In
// submodule checkouts and linked worktrees .git is a file pointing elsewhere,
// which go-git has already followed when opening the repository.
func resolveGitDir(repo *git.Repository, root string) string {
	if s, ok := repo.Storer.(*filesystem.Storage); ok {
		return s.Filesystem().Root()
	}
	return filepath.Join(root, git.GitDirName)
}

// getAuth returns token authentication for HTTP remotes, or nil when no token
// is configured.
func (r *gitRepository) getAuth() transport.AuthMethod {
	if r.token == "" {
		return nil
	}
	return &http.BasicAuth{
		Username: "x-access-token",
		Password: r.token,
	}
}

func defaultRemote[T any](remotes map[string]T) string {
	if len(remotes) == 0 {
		return ""
	}
	if _, ok := remotes[DefaultRemoteName]; ok {
		return DefaultRemoteName
	}
	names := make([]string, 0, len(remotes))
	for name := range remotes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0]
}
