package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gofrs/flock"
)

var (
	// ErrInvalidLockName is returned for lock names that are not plain file names.
	ErrInvalidLockName = errors.New("invalid lock name")
	// ErrLocked is returned when another analysis holds the lock.
	ErrLocked = errors.New("another analysis is running")
)

var lockNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateLockName checks that name can be used as a lock file name.
func ValidateLockName(name string) error {
	if name == "" || name == "." || name == ".." || !lockNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidLockName, name)
	}
	return nil
}

// AnalysisLock ensures only one analysis writes to a history database at a time.
type AnalysisLock struct {
	path string
	lock *flock.Flock
}

// NewAnalysisLock creates the lock file <dir>/<name>.lock.
func NewAnalysisLock(dir, name string) (*AnalysisLock, error) {
	if err := ValidateLockName(name); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, name+".lock")
	return &AnalysisLock{path: path, lock: flock.New(path)}, nil
}

// Path returns the lock file path.
func (l *AnalysisLock) Path() string { return l.path }

// Acquire waits up to timeout for the lock. A zero timeout tries exactly once.
func (l *AnalysisLock) Acquire(ctx context.Context, timeout time.Duration) error {
	var (
		locked bool
		err    error
	)
	if timeout <= 0 {
		locked, err = l.lock.TryLock()
	} else {
		lockCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		locked, err = l.lock.TryLockContext(lockCtx, 100*time.Millisecond)
		if err != nil && errors.Is(err, context.DeadlineExceeded) {
			err = nil
		}
	}
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.path, err)
	}
	if !locked {
		return fmt.Errorf("%w: %s is held", ErrLocked, l.path)
	}
	return nil
}

// Release releases the lock. It is safe to call when the lock is not held.
func (l *AnalysisLock) Release() error {
	return l.lock.Unlock()
}
