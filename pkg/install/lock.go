package install

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// LockFileName is the advisory lock file guarding concurrent installs into
// one environment.  The name is shared with the reference implementation so
// that the two serialize against each other.
const LockFileName = "install-wheel-rs.lock"

const lockRetryInterval = 50 * time.Millisecond

// acquireLock takes the exclusive advisory lock at path, blocking until it
// is held.  A zero timeout blocks indefinitely (subject to ctx); a non-zero
// timeout fails with ErrLockTimeout.
func acquireLock(ctx context.Context, path string, timeout time.Duration) (release func(), err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fl := flock.New(path)
	ok, err := fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		if timeout > 0 && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s after %s", ErrLockTimeout, path, timeout)
		}
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, path)
	}
	return func() {
		_ = fl.Unlock()
	}, nil
}
