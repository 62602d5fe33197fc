package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/compozy/subsync/internal/domain"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// JournalSchemaVersion is written into every journal file
	JournalSchemaVersion = 1
	// JournalFilePermissions defines the permissions for journal files
	JournalFilePermissions = 0600
	// JournalDirPermissions defines the permissions for the journal directory
	JournalDirPermissions = 0700
	// LockTimeout defines the maximum time to wait for the directory lock
	LockTimeout = 30 * time.Second
	// LockRetryInterval defines the interval between lock attempts
	LockRetryInterval = 100 * time.Millisecond
	// DefaultStateDir is where journals are kept relative to the repository
	DefaultStateDir = ".subsync-state"

	journalExt = ".json"
	lockName   = ".lock"
)

// ErrRunNotFound is returned when no journal exists for a session.
var ErrRunNotFound = errors.New("run journal not found")

// StateRepository stores run journals so a failed multi-path run can be
// inspected later.
type StateRepository interface {
	Save(ctx context.Context, state *domain.RunState) error
	Load(ctx context.Context, sessionID string) (*domain.RunState, error)
	// LoadLatest returns the most recently updated journal.
	LoadLatest(ctx context.Context) (*domain.RunState, error)
	// List returns every readable journal, most recently updated first.
	List(ctx context.Context) ([]*domain.RunState, error)
	Delete(ctx context.Context, sessionID string) error
}

// journalFile is the on-disk form of one run. Checksum covers the encoded run.
type journalFile struct {
	Schema   int              `json:"schema"`
	Checksum string           `json:"checksum"`
	Run      *domain.RunState `json:"run"`
}

// JSONStateRepository keeps one JSON file per session in a directory. Every
// access holds a file lock on the directory so concurrent subsync processes
// never see a half-written journal.
type JSONStateRepository struct {
	fs     afero.Fs
	dir    string
	logger *zap.Logger
}

// NewJSONStateRepository creates a journal store rooted at dir.
func NewJSONStateRepository(fs afero.Fs, dir string, logger *zap.Logger) *JSONStateRepository {
	if dir == "" {
		dir = DefaultStateDir
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONStateRepository{fs: fs, dir: dir, logger: logger}
}

var _ StateRepository = (*JSONStateRepository)(nil)

func (r *JSONStateRepository) Save(ctx context.Context, state *domain.RunState) error {
	if err := checkSessionID(state.SessionID); err != nil {
		return err
	}
	data, err := encodeJournal(state)
	if err != nil {
		return err
	}
	return r.withLock(ctx, true, func() error {
		path := r.journalPath(state.SessionID)
		tmp := path + ".tmp"
		if err := afero.WriteFile(r.fs, tmp, data, JournalFilePermissions); err != nil {
			return fmt.Errorf("failed to write journal: %w", err)
		}
		if err := r.fs.Rename(tmp, path); err != nil {
			if rmErr := r.fs.Remove(tmp); rmErr != nil {
				r.logger.Warn("failed to remove temp journal", zap.String("file", tmp), zap.Error(rmErr))
			}
			return fmt.Errorf("failed to replace journal: %w", err)
		}
		return nil
	})
}

func (r *JSONStateRepository) Load(ctx context.Context, sessionID string) (*domain.RunState, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}
	var run *domain.RunState
	err := r.withLock(ctx, false, func() error {
		var err error
		run, err = r.read(r.journalPath(sessionID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *JSONStateRepository) LoadLatest(ctx context.Context) (*domain.RunState, error) {
	runs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return runs[0], nil
}

// List skips files that fail to decode or verify; they are logged and left in
// place for inspection.
func (r *JSONStateRepository) List(ctx context.Context) ([]*domain.RunState, error) {
	var runs []*domain.RunState
	err := r.withLock(ctx, false, func() error {
		infos, err := afero.ReadDir(r.fs, r.dir)
		if err != nil {
			return fmt.Errorf("failed to read journal directory: %w", err)
		}
		for _, info := range infos {
			name := info.Name()
			if info.IsDir() || filepath.Ext(name) != journalExt {
				continue
			}
			if checkSessionID(strings.TrimSuffix(name, journalExt)) != nil {
				continue
			}
			run, err := r.read(filepath.Join(r.dir, name))
			if err != nil {
				r.logger.Warn("skipping unreadable run journal", zap.String("file", name), zap.Error(err))
				continue
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].UpdatedAt.After(runs[j].UpdatedAt)
	})
	return runs, nil
}

func (r *JSONStateRepository) Delete(ctx context.Context, sessionID string) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	return r.withLock(ctx, true, func() error {
		err := r.fs.Remove(r.journalPath(sessionID))
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, sessionID)
		}
		if err != nil {
			return fmt.Errorf("failed to delete journal: %w", err)
		}
		return nil
	})
}

// withLock runs fn while holding the directory lock, exclusive for writers and
// shared for readers.
func (r *JSONStateRepository) withLock(ctx context.Context, exclusive bool, fn func() error) error {
	if err := r.fs.MkdirAll(r.dir, JournalDirPermissions); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}
	lock := flock.New(filepath.Join(r.dir, lockName))
	try := lock.TryRLock
	if exclusive {
		try = lock.TryLock
	}
	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	if _, err := pollLock(lockCtx, try); err != nil {
		return fmt.Errorf("failed to lock journal directory: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to unlock journal directory", zap.Error(err))
		}
	}()
	return fn()
}

func (r *JSONStateRepository) read(path string) (*domain.RunState, error) {
	data, err := afero.ReadFile(r.fs, path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, strings.TrimSuffix(filepath.Base(path), journalExt))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return decodeJournal(data)
}

func (r *JSONStateRepository) journalPath(sessionID string) string {
	return filepath.Join(r.dir, sessionID+journalExt)
}

// errLockBusy marks a lock attempt that should be retried
var errLockBusy = errors.New("lock is held by another process")

// pollLock retries tryLock every LockRetryInterval until it succeeds, fails
// hard, or ctx is done.
func pollLock(ctx context.Context, tryLock func() (bool, error)) (bool, error) {
	err := retry.Do(ctx, retry.NewConstant(LockRetryInterval), func(_ context.Context) error {
		locked, err := tryLock()
		if err != nil {
			return err
		}
		if !locked {
			return retry.RetryableError(errLockBusy)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// checkSessionID keeps session IDs to the UUIDs the orchestrators generate, so
// an ID can never name a path outside the journal directory.
func checkSessionID(sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return fmt.Errorf("invalid session ID %q: %w", sessionID, err)
	}
	return nil
}

func encodeJournal(run *domain.RunState) ([]byte, error) {
	sum, err := runChecksum(run)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(journalFile{Schema: JournalSchemaVersion, Checksum: sum, Run: run}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode journal: %w", err)
	}
	return data, nil
}

func decodeJournal(data []byte) (*domain.RunState, error) {
	var f journalFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode journal: %w", err)
	}
	if f.Schema != JournalSchemaVersion {
		return nil, fmt.Errorf("unsupported journal schema %d", f.Schema)
	}
	if f.Run == nil {
		return nil, errors.New("journal has no run")
	}
	sum, err := runChecksum(f.Run)
	if err != nil {
		return nil, err
	}
	if sum != f.Checksum {
		return nil, errors.New("journal checksum mismatch: data may be corrupted")
	}
	return f.Run, nil
}

func runChecksum(run *domain.RunState) (string, error) {
	data, err := json.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("failed to encode run for checksum: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
