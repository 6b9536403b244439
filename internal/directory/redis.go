package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"ai-receptionist/internal/calls"
)

// DefaultRedisKey is the hash holding number -> contractor entries.
const DefaultRedisKey = "receptionist:contractors"

// RedisDirectory resolves numbers from a redis hash. Values are either a bare
// contractor id or a JSON object {"id","name"}, same as the static map.
type RedisDirectory struct {
	rdb redis.Cmdable
	key string
}

func NewRedis(rdb redis.Cmdable, key string) *RedisDirectory {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisDirectory{rdb: rdb, key: key}
}

func (d *RedisDirectory) Resolve(ctx context.Context, dialed string) (Contractor, error) {
	v, err := d.rdb.HGet(ctx, d.key, calls.NormalizePhone(dialed)).Result()
	if errors.Is(err, redis.Nil) {
		return Contractor{}, ErrNotFound
	}
	if err != nil {
		return Contractor{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	v = strings.TrimSpace(v)
	if v == "" {
		return Contractor{}, ErrNotFound
	}
	var e entry
	if err := json.Unmarshal([]byte(v), &e); err != nil || e.ID == "" {
		// Plain ids are stored unquoted.
		return Contractor{ID: v}, nil
	}
	return Contractor(e), nil
}

// Put assigns a number to a contractor. Used by tooling and tests.
func (d *RedisDirectory) Put(ctx context.Context, number string, c Contractor) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return d.rdb.HSet(ctx, d.key, calls.NormalizePhone(number), string(b)).Err()
}
