package receptionist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"ai-receptionist/pkg/utils"
)

// Idempotency caches results by CallSid so provider retries of the same
// webhook are answered without repeating side effects.
type Idempotency interface {
	Lookup(ctx context.Context, callSid string) (Result, bool, error)
	// Remember stores r unless a result exists and returns the stored one.
	Remember(ctx context.Context, callSid string, r Result) (Result, error)
}

type memoryEntry struct {
	result  Result
	expires time.Time
}

// MemoryIdempotency is a process-local cache with lazy expiry.
type MemoryIdempotency struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	clock   func() time.Time
}

func NewMemoryIdempotency(ttl time.Duration) *MemoryIdempotency {
	return &MemoryIdempotency{entries: make(map[string]memoryEntry), ttl: ttl, clock: time.Now}
}

func (m *MemoryIdempotency) Lookup(ctx context.Context, callSid string) (Result, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[callSid]
	if !ok {
		return Result{}, false, nil
	}
	if m.clock().After(e.expires) {
		delete(m.entries, callSid)
		return Result{}, false, nil
	}
	return e.result, true, nil
}

func (m *MemoryIdempotency) Remember(ctx context.Context, callSid string, r Result) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock()
	if e, ok := m.entries[callSid]; ok && !now.After(e.expires) {
		return e.result, nil
	}
	m.entries[callSid] = memoryEntry{result: r, expires: now.Add(m.ttl)}
	return r, nil
}

// RedisClient is the subset of *redis.Client used for idempotency.
type RedisClient interface {
	redis.Scripter
	Get(ctx context.Context, key string) *redis.StringCmd
}

const redisKeyPrefix = "receptionist:call:"

// RedisIdempotency shares the cache across replicas.
type RedisIdempotency struct {
	rdb RedisClient
	ttl time.Duration
}

func NewRedisIdempotency(rdb RedisClient, ttl time.Duration) *RedisIdempotency {
	return &RedisIdempotency{rdb: rdb, ttl: ttl}
}

func (r *RedisIdempotency) Lookup(ctx context.Context, callSid string) (Result, bool, error) {
	v, err := r.rdb.Get(ctx, redisKeyPrefix+callSid).Result()
	if errors.Is(err, redis.Nil) {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	var res Result
	if err := json.Unmarshal([]byte(v), &res); err != nil {
		return Result{}, false, fmt.Errorf("idempotency decode: %w", err)
	}
	return res, true, nil
}

func (r *RedisIdempotency) Remember(ctx context.Context, callSid string, res Result) (Result, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return res, err
	}
	stored, err := utils.RememberOnce(ctx, r.rdb, redisKeyPrefix+callSid, string(b), r.ttl)
	if err != nil {
		return res, fmt.Errorf("idempotency store: %w", err)
	}
	var out Result
	if err := json.Unmarshal([]byte(stored), &out); err != nil {
		return res, fmt.Errorf("idempotency decode: %w", err)
	}
	return out, nil
}
