// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/sentinelgate/gatekeep/internal/domain/ratelimit"
)

// MemoryRateLimiter implements ratelimit.Limiter with a sliding window kept
// in memory. Thread-safe for concurrent access. Includes background
// cleanup to prevent unbounded memory growth from one-shot clients.
type MemoryRateLimiter struct {
	buckets         map[string][]time.Time
	mu              sync.Mutex
	stopChan        chan struct{}
	wg              sync.WaitGroup
	once            sync.Once
	cleanupInterval time.Duration
}

// NewRateLimiter creates an in-memory rate limiter with the reference
// cleanup interval of 300s.
func NewRateLimiter() *MemoryRateLimiter {
	return NewRateLimiterWithConfig(300 * time.Second)
}

// NewRateLimiterWithConfig creates an in-memory rate limiter with a custom
// cleanup interval.
func NewRateLimiterWithConfig(cleanupInterval time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		buckets:         make(map[string][]time.Time),
		stopChan:        make(chan struct{}),
		cleanupInterval: cleanupInterval,
	}
}

// Check discards timestamps older than now-Window from key's bucket, then
// admits if the remaining count is strictly less than MaxRequests.
func (r *MemoryRateLimiter) Check(key string, config ratelimit.Config) ratelimit.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-config.Window)

	fresh := discardStale(r.buckets[key], cutoff)

	if len(fresh) >= config.MaxRequests {
		r.buckets[key] = fresh
		return ratelimit.Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: fresh[0].Add(config.Window).Sub(now),
		}
	}

	fresh = append(fresh, now)
	r.buckets[key] = fresh

	return ratelimit.Result{
		Allowed:   true,
		Remaining: config.MaxRequests - len(fresh),
	}
}

// discardStale returns the suffix of timestamps at or after cutoff.
// Timestamps are always appended in increasing order, so the stale prefix
// is found in a single scan; when it is non-empty, the fresh suffix is
// copied into a new slice.
func discardStale(timestamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(timestamps) && timestamps[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return timestamps
	}
	return append([]time.Time(nil), timestamps[i:]...)
}

// StartCleanup starts the background cleanup goroutine. It stops when ctx
// is cancelled or Stop() is called.
func (r *MemoryRateLimiter) StartCleanup(ctx context.Context, window time.Duration) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopChan:
				return
			case <-ticker.C:
				r.cleanup(window)
			}
		}
	}()
}

// cleanup discards stale timestamps from every bucket, then removes
// buckets that became empty. Holds the lock for the whole sweep,
// including the debug log line at the end.
func (r *MemoryRateLimiter) cleanup(window time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-window)
	removed := 0

	for key, timestamps := range r.buckets {
		fresh := discardStale(timestamps, cutoff)
		if len(fresh) == 0 {
			delete(r.buckets, key)
			removed++
			continue
		}
		r.buckets[key] = fresh
	}

	if removed > 0 {
		slog.Debug("rate limiter cleanup completed",
			"removed_buckets", removed,
			"remaining_buckets", len(r.buckets))
	}
}

// Stop gracefully stops the cleanup goroutine and waits for it to exit.
// Safe to call multiple times.
func (r *MemoryRateLimiter) Stop() {
	r.once.Do(func() {
		close(r.stopChan)
	})
	r.wg.Wait()
}

// Size returns the current number of tracked buckets. Useful for testing
// and monitoring memory usage.
func (r *MemoryRateLimiter) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets)
}

// Compile-time interface verification.
var _ ratelimit.Limiter = (*MemoryRateLimiter)(nil)

// ShardedRateLimiter spreads buckets across N independent MemoryRateLimiter
// shards keyed by xxhash.Sum64String(key) % N, trading one global mutex for
// N smaller ones under high concurrency. With a single shard it behaves
// identically to MemoryRateLimiter.
type ShardedRateLimiter struct {
	shards []*MemoryRateLimiter
}

// NewShardedRateLimiter creates a ShardedRateLimiter with shardCount
// independent shards, each with its own cleanup interval. shardCount < 1
// is treated as 1.
func NewShardedRateLimiter(shardCount int, cleanupInterval time.Duration) *ShardedRateLimiter {
	if shardCount < 1 {
		shardCount = 1
	}
	shards := make([]*MemoryRateLimiter, shardCount)
	for i := range shards {
		shards[i] = NewRateLimiterWithConfig(cleanupInterval)
	}
	return &ShardedRateLimiter{shards: shards}
}

func (s *ShardedRateLimiter) shardFor(key string) *MemoryRateLimiter {
	idx := xxhash.Sum64String(key) % uint64(len(s.shards))
	return s.shards[idx]
}

// Check delegates to the shard owning key.
func (s *ShardedRateLimiter) Check(key string, config ratelimit.Config) ratelimit.Result {
	return s.shardFor(key).Check(key, config)
}

// StartCleanup starts the cleanup goroutine on every shard.
func (s *ShardedRateLimiter) StartCleanup(ctx context.Context, window time.Duration) {
	for _, shard := range s.shards {
		shard.StartCleanup(ctx, window)
	}
}

// Stop stops every shard's cleanup goroutine and waits for them to exit.
func (s *ShardedRateLimiter) Stop() {
	for _, shard := range s.shards {
		shard.Stop()
	}
}

var _ ratelimit.Limiter = (*ShardedRateLimiter)(nil)
