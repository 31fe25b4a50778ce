package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/krishanki/PhonePixie/internal/config"
	"github.com/krishanki/PhonePixie/internal/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "ratelimit:"

// Store is a rate limit window store that owns a connection
type Store interface {
	middleware.WindowStore
	Ping(ctx context.Context) error
	Close() error
}

// NewWindowStore creates the window store selected by storage.type
func NewWindowStore(cfg *config.Config, logger *logrus.Logger) (Store, error) {
	switch cfg.Storage.Type {
	case "redis":
		return NewRedisStore(&cfg.Storage.Redis, cfg.RateLimit.IdleTTL, logger)
	case "memory", "":
		return NewMemoryStore(cfg.RateLimit.IdleTTL, logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}

// MemoryStore keeps windows in process. Idle clients expire after idleTTL,
// or after their window when that is longer.
type MemoryStore struct {
	mu      sync.Mutex
	windows *cache.Cache
	idleTTL time.Duration
	logger  *logrus.Logger
}

func NewMemoryStore(idleTTL time.Duration, logger *logrus.Logger) *MemoryStore {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &MemoryStore{
		windows: cache.New(idleTTL, idleTTL/2),
		idleTTL: idleTTL,
		logger:  logger,
	}
}

func (m *MemoryStore) Take(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (middleware.Window, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var w middleware.Window
	if val, found := m.windows.Get(keyPrefix + key); found {
		w = val.(middleware.Window)
	}
	w, allowed := w.Take(limit, window, now)
	ttl := m.idleTTL
	if window > ttl {
		ttl = window
	}
	m.windows.Set(keyPrefix+key, w, ttl)
	return w, allowed, nil
}

// Len is the number of tracked clients
func (m *MemoryStore) Len() int {
	return m.windows.ItemCount()
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Close() error {
	m.windows.Flush()
	return nil
}

// takeScript applies one fixed-window step to the hash at KEYS[1].
// ARGV: limit, window ms, now ms, idle ttl ms. Returns {count, start ms, allowed}.
var takeScript = redis.NewScript(`
local start = tonumber(redis.call('HGET', KEYS[1], 'start'))
local count = tonumber(redis.call('HGET', KEYS[1], 'count')) or 0
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local idle = tonumber(ARGV[4])

if start == nil or now >= start + window then
	start = now
	count = 0
end

local allowed = 0
if count < limit then
	count = count + 1
	allowed = 1
end

redis.call('HSET', KEYS[1], 'start', start, 'count', count)
redis.call('PEXPIRE', KEYS[1], math.max(idle, window))
return {count, start, allowed}
`)

// RedisStore shares windows between server instances
type RedisStore struct {
	client  *redis.Client
	idleTTL time.Duration
	logger  *logrus.Logger
}

func NewRedisStore(cfg *config.RedisConfig, idleTTL time.Duration, logger *logrus.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.WithField("addr", cfg.Addr).Info("Connected to redis")
	return &RedisStore{
		client:  client,
		idleTTL: idleTTL,
		logger:  logger,
	}, nil
}

func (r *RedisStore) Take(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (middleware.Window, bool, error) {
	res, err := takeScript.Run(ctx, r.client, []string{keyPrefix + key},
		limit, window.Milliseconds(), now.UnixMilli(), r.idleTTL.Milliseconds()).Result()
	if err != nil {
		return middleware.Window{}, false, err
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 3 {
		return middleware.Window{}, false, fmt.Errorf("unexpected script result: %v", res)
	}
	nums := make([]int64, len(vals))
	for i, v := range vals {
		n, ok := v.(int64)
		if !ok {
			return middleware.Window{}, false, fmt.Errorf("unexpected script value %v", v)
		}
		nums[i] = n
	}

	w := middleware.Window{Count: int(nums[0]), Start: time.UnixMilli(nums[1])}
	return w, nums[2] == 1, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
