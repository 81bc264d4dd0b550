package planner

import (
	"context"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// CachingPlanner memoizes successful plans per question for a TTL.
// Failures are never cached.
type CachingPlanner struct {
	next  Planner
	cache *ttlcache.Cache[string, Plan]
}

// NewCachingPlanner wraps next with a TTL cache. Call Close to stop the
// expiry loop.
func NewCachingPlanner(next Planner, ttl time.Duration) *CachingPlanner {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, Plan](ttl),
		ttlcache.WithDisableTouchOnHit[string, Plan](),
	)
	go cache.Start()
	return &CachingPlanner{next: next, cache: cache}
}

// Plan returns a cached plan or delegates to the wrapped planner.
func (c *CachingPlanner) Plan(ctx context.Context, question string) (Plan, error) {
	key := strings.ToLower(strings.TrimSpace(question))
	if item := c.cache.Get(key); item != nil {
		return item.Value(), nil
	}
	plan, err := c.next.Plan(ctx, question)
	if err != nil {
		return Plan{}, err
	}
	c.cache.Set(key, plan, ttlcache.DefaultTTL)
	return plan, nil
}

// Close stops the cache's expiry loop.
func (c *CachingPlanner) Close() {
	c.cache.Stop()
}
