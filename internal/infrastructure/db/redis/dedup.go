package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker provides settlement idempotency checks backed by Redis.
// Key format: settle:<user_id>:<course_id>:<unix_timestamp>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// Claim atomically records that this completion attempt is being settled.
// It returns false when the same attempt was already claimed, which makes a
// redelivered event a no-op before any reward is granted.
func (d *DedupChecker) Claim(ctx context.Context, userID, courseID string, ts time.Time) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(userID, courseID, ts), "1", dedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return ok, nil
}

// Release drops a claim so a failed settlement can be retried.
func (d *DedupChecker) Release(ctx context.Context, userID, courseID string, ts time.Time) error {
	return d.client.Del(ctx, d.key(userID, courseID, ts)).Err()
}

func (d *DedupChecker) key(userID, courseID string, ts time.Time) string {
	return fmt.Sprintf("settle:%s:%s:%d", userID, courseID, ts.Unix())
}
