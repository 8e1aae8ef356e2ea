// internal/stats/stats.go
//
// Prompt view counters backed by Redis.
//
// Context
// -------
// Every non-bot detail view bumps a sorted-set member keyed by slug, which
// gives the home page a "popular prompts" rail for free via ZREVRANGE.  The
// counter is best-effort: when Redis is not configured or a command fails,
// pages render exactly as before and the miss is logged at DEBUG.  Nothing
// here sits on a critical path.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const viewsKey = "aikotoba:views"

// View is one entry of the popularity rail.
type View struct {
	Slug  string
	Count int64
}

// Counter tracks per-prompt view counts.  The zero value and a nil pointer
// are safe no-ops, so callers never branch on "is Redis configured".
type Counter struct {
	rdb *redis.Client
}

// New connects to Redis.  An empty addr returns a disabled counter and no
// error.
func New(ctx context.Context, addr, password string, db int) (*Counter, error) {
	if addr == "" {
		return &Counter{}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("stats: redis ping: %w", err)
	}
	return &Counter{rdb: rdb}, nil
}

// Enabled reports whether a Redis connection is live.
func (c *Counter) Enabled() bool { return c != nil && c.rdb != nil }

// Bump increments the view count for slug.  Failures are logged and
// swallowed.
func (c *Counter) Bump(ctx context.Context, slug string) {
	if !c.Enabled() || slug == "" {
		return
	}
	if err := c.rdb.ZIncrBy(ctx, viewsKey, 1, slug).Err(); err != nil {
		zap.L().Debug("view counter bump failed",
			zap.String("slug", slug),
			zap.Error(err))
	}
}

// Top returns the n most viewed slugs, highest first.  A disabled counter
// returns an empty list and no error.
func (c *Counter) Top(ctx context.Context, n int) ([]View, error) {
	if !c.Enabled() || n <= 0 {
		return nil, nil
	}
	zs, err := c.rdb.ZRevRangeWithScores(ctx, viewsKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("stats: top views: %w", err)
	}
	out := make([]View, 0, len(zs))
	for _, z := range zs {
		slug, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, View{Slug: slug, Count: int64(z.Score)})
	}
	return out, nil
}

// Close releases the Redis connection.
func (c *Counter) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}
