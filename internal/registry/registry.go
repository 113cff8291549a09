// SPDX-License-Identifier: MIT

// Package registry persists the most recent repository discovery so later
// runs can operate on the account set without talking to GitHub.
package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.yaml.in/yaml/v3"

	"github.com/skaphos/gitfleet/internal/model"
)

// SnapshotFilename is the snapshot file name under the cache directory.
const SnapshotFilename = "snapshot.yaml"

// lockTimeout bounds how long Save and Load wait on the advisory lock.
const lockTimeout = 5 * time.Second

// ErrLockTimeout is returned when another process holds the snapshot lock
// past the lock timeout.
var ErrLockTimeout = errors.New("timed out waiting for snapshot lock")

// Snapshot is the cached result of one discovery run.
type Snapshot struct {
	// FetchedAt records when the discovery ran.
	FetchedAt time.Time `yaml:"fetched_at"`
	// Username is the account the repositories were listed for.
	Username string `yaml:"username"`
	// Authenticated reports whether the discovery used a token. An
	// unauthenticated snapshot misses private repositories.
	Authenticated bool `yaml:"authenticated"`
	// Repos is the deduplicated repository list.
	Repos []model.Repository `yaml:"repos"`
}

// DefaultPath returns the snapshot location under the user cache dir.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving user cache dir: %w", err)
	}
	return filepath.Join(dir, "gitfleet", SnapshotFilename), nil
}

// ResolvePath picks the snapshot path: the configured override when set,
// otherwise the default location.
func ResolvePath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return DefaultPath()
}

// Save writes the snapshot under an exclusive advisory lock so concurrent
// runs do not interleave writes.
func Save(ctx context.Context, snap *Snapshot, path string) error {
	if snap == nil {
		return errors.New("snapshot is nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	unlock, err := acquire(ctx, path, (*flock.Flock).TryLockContext)
	if err != nil {
		return err
	}
	defer unlock()

	data, err := yaml.Marshal(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a snapshot under a shared advisory lock. A missing file
// surfaces the underlying not-exist error so callers can tell "no cache
// yet" from a corrupt one.
func Load(ctx context.Context, path string) (*Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	unlock, err := acquire(ctx, path, (*flock.Flock).TryRLockContext)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// IsStale reports whether the snapshot is older than the TTL in days. A
// non-positive TTL disables the check. An unknown fetch time counts as
// stale.
func (s *Snapshot) IsStale(ttlDays int) bool {
	if s == nil || ttlDays <= 0 {
		return false
	}
	return time.Since(s.FetchedAt) > time.Duration(ttlDays)*24*time.Hour
}

// Age returns how long ago the snapshot was fetched, rounded for display.
func (s *Snapshot) Age() time.Duration {
	if s == nil || s.FetchedAt.IsZero() {
		return 0
	}
	return time.Since(s.FetchedAt).Round(time.Minute)
}

// acquire takes the sidecar lock next to the snapshot file. The lock file
// is separate from the data file so lock acquisition never truncates the
// snapshot a reader is about to load.
func acquire(ctx context.Context, path string, try func(*flock.Flock, context.Context, time.Duration) (bool, error)) (func(), error) {
	lock := flock.New(path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := try(lock, lockCtx, 100*time.Millisecond)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("acquiring snapshot lock: %w", err)
	}
	if !locked {
		return nil, ErrLockTimeout
	}
	return func() { _ = lock.Unlock() }, nil
}
