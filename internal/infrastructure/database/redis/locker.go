package redis

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/your-org/inventory-backend/internal/domain/replenishment"
)

// Locker hands out short-lived distributed locks
type Locker struct {
	client *redislock.Client
}

// NewLocker creates a locker on the given connection
func NewLocker(c *Client) *Locker {
	return &Locker{client: redislock.New(c.Redis)}
}

// Acquire obtains key for ttl without retrying. replenishment.ErrLocked is
// returned while another holder owns it.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, replenishment.ErrLocked
	}
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		err := lock.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			return nil
		}
		return err
	}, nil
}
