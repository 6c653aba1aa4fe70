package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/valkey-io/valkey-go"
)

const keyPrefix = "ratelimit:"

// recordScript returns {recorded, count, pttl}. The counter key expires with
// its window, so an absent key means a fresh window.
const recordScript = `
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
if count >= tonumber(ARGV[1]) then
  return {0, count, redis.call('PTTL', KEYS[1])}
end
count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {1, count, redis.call('PTTL', KEYS[1])}
`

// RedisStore keeps windows in Redis so several processes share budgets.
type RedisStore struct {
	client *redis.Client
	script *redis.Script
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &RedisStore{client: client, script: redis.NewScript(recordScript)}, nil
}

// Record implements Store.
func (s *RedisStore) Record(ctx context.Context, key string, now time.Time, limit int, window time.Duration) (Window, bool, error) {
	vals, err := s.script.Run(ctx, s.client, []string{keyPrefix + key}, limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Window{}, false, fmt.Errorf("redis record: %w", err)
	}
	return windowFromScript(vals, now, window)
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// ValkeyStore is the Valkey equivalent of RedisStore.
type ValkeyStore struct {
	client valkey.Client
	script *valkey.Lua
}

// NewValkeyStore connects to addr and verifies the connection.
func NewValkeyStore(ctx context.Context, addr, password string) (*ValkeyStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
		Password:    password,
	})
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey %s: %w", addr, err)
	}
	return &ValkeyStore{client: client, script: valkey.NewLuaScript(recordScript)}, nil
}

// Record implements Store.
func (s *ValkeyStore) Record(ctx context.Context, key string, now time.Time, limit int, window time.Duration) (Window, bool, error) {
	args := []string{strconv.Itoa(limit), strconv.FormatInt(window.Milliseconds(), 10)}
	vals, err := s.script.Exec(ctx, s.client, []string{keyPrefix + key}, args).AsIntSlice()
	if err != nil {
		return Window{}, false, fmt.Errorf("valkey record: %w", err)
	}
	return windowFromScript(vals, now, window)
}

// Close releases the client.
func (s *ValkeyStore) Close() error {
	s.client.Close()
	return nil
}

func windowFromScript(vals []int64, now time.Time, window time.Duration) (Window, bool, error) {
	if len(vals) != 3 {
		return Window{}, false, fmt.Errorf("unexpected script reply of %d values", len(vals))
	}
	ttl := time.Duration(vals[2]) * time.Millisecond
	if ttl < 0 || ttl > window {
		ttl = window
	}
	return Window{Start: now.Add(ttl - window), Count: int(vals[1])}, vals[0] == 1, nil
}
