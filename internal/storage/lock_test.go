package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for AnalysisLock:
// - Lock names with separators or special characters are rejected
// - A second lock on the same file fails with ErrLocked while the first is held
// - The lock can be re-acquired after release

func TestValidateLockName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"gauge", "gauge.analysis", "ci_lock-1"} {
		assert.NoError(t, ValidateLockName(name), name)
	}
	for _, name := range []string{"", ".", "..", "a/b", `a\b`, "lock name", "lock*"} {
		assert.ErrorIs(t, ValidateLockName(name), ErrInvalidLockName, name)
	}

	_, err := NewAnalysisLock(t.TempDir(), "../escape")
	assert.ErrorIs(t, err, ErrInvalidLockName)
}

func TestAnalysisLock_Exclusive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first, err := NewAnalysisLock(dir, "gauge")
	require.NoError(t, err)
	second, err := NewAnalysisLock(dir, "gauge")
	require.NoError(t, err)
	assert.Equal(t, first.Path(), second.Path())

	ctx := context.Background()
	require.NoError(t, first.Acquire(ctx, 0))
	assert.ErrorIs(t, second.Acquire(ctx, 0), ErrLocked)
	assert.ErrorIs(t, second.Acquire(ctx, 150*time.Millisecond), ErrLocked)

	require.NoError(t, first.Release())
	require.NoError(t, second.Acquire(ctx, time.Second))
	require.NoError(t, second.Release())
}
