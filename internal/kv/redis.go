package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Redis adapts a go-redis client to the Store interface. This is the
// reference backend: the other drivers mimic its observable semantics.
// The caller owns the client's lifecycle; Redis never closes it.
type Redis struct {
	rdb redis.UniversalClient
}

var _ Store = (*Redis)(nil)

// NewRedis wraps an existing client. Callers should Ping the client
// themselves if they need to verify liveness up front.
func NewRedis(rdb redis.UniversalClient) *Redis {
	return &Redis{rdb: rdb}
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, normalizeTypeErr(err))
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, normalizeTypeErr(err))
	}
	return raw, true, nil
}

func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	n, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, normalizeTypeErr(err))
	}
	return n, nil
}

func (r *Redis) Append(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.RPush(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("append %s: %w", key, normalizeTypeErr(err))
	}
	return nil
}

func (r *Redis) List(ctx context.Context, key string) ([][]byte, error) {
	entries, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", key, normalizeTypeErr(err))
	}
	out := make([][]byte, 0, len(entries))
	for _, entry := range entries {
		out = append(out, []byte(entry))
	}
	return out, nil
}

func (r *Redis) FlushAll(ctx context.Context) error {
	if err := r.rdb.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// normalizeTypeErr maps the server's type errors (WRONGTYPE replies and
// non-integer INCR targets) onto ErrWrongType so callers can errors.Is
// across drivers. go-redis exposes these only as reply strings.
func normalizeTypeErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "WRONGTYPE") || strings.Contains(msg, "not an integer") {
		return ErrWrongType
	}
	return err
}
