package receiver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MessageIDHeader carries the id of the delivered message. Retries of the
// same message share it.
const MessageIDHeader = "Upstash-Message-Id"

// Deduplicator remembers delivered message ids. Seen marks id as delivered
// and reports whether it already was. Forget drops the mark so a retry of a
// delivery that was not handled successfully is processed again.
type Deduplicator interface {
	Seen(ctx context.Context, id string) (bool, error)
	Forget(ctx context.Context, id string) error
}

// MemoryDeduplicator keeps ids in process memory for a fixed TTL.
type MemoryDeduplicator struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

// NewMemoryDeduplicator creates a MemoryDeduplicator that forgets ids after ttl.
func NewMemoryDeduplicator(ttl time.Duration) *MemoryDeduplicator {
	return &MemoryDeduplicator{
		ttl:  ttl,
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Seen implements Deduplicator.
func (d *MemoryDeduplicator) Seen(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for k, exp := range d.seen {
		if !now.Before(exp) {
			delete(d.seen, k)
		}
	}
	if _, ok := d.seen[id]; ok {
		return true, nil
	}
	d.seen[id] = now.Add(d.ttl)
	return false, nil
}

// Forget implements Deduplicator.
func (d *MemoryDeduplicator) Forget(_ context.Context, id string) error {
	d.mu.Lock()
	delete(d.seen, id)
	d.mu.Unlock()
	return nil
}

// RedisClient is the subset of the go-redis client used by RedisDeduplicator.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisDeduplicator shares delivered ids between processes through Redis.
type RedisDeduplicator struct {
	client RedisClient
	prefix string
	ttl    time.Duration
}

// NewRedisDeduplicator creates a RedisDeduplicator. Keys are prefix+id and
// expire after ttl.
func NewRedisDeduplicator(client RedisClient, prefix string, ttl time.Duration) *RedisDeduplicator {
	return &RedisDeduplicator{client: client, prefix: prefix, ttl: ttl}
}

// Seen implements Deduplicator.
func (d *RedisDeduplicator) Seen(ctx context.Context, id string) (bool, error) {
	created, err := d.client.SetNX(ctx, d.prefix+id, 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record message %s: %w", id, err)
	}
	return !created, nil
}

// Forget implements Deduplicator.
func (d *RedisDeduplicator) Forget(ctx context.Context, id string) error {
	if err := d.client.Del(ctx, d.prefix+id).Err(); err != nil {
		return fmt.Errorf("failed to forget message %s: %w", id, err)
	}
	return nil
}
