package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/krishanki/PhonePixie/internal/config"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Service caches generated text keyed by model and prompt
type Service interface {
	Get(ctx context.Context, model, system, prompt string) (string, bool)
	Set(ctx context.Context, model, system, prompt, answer string) error
	Clear(ctx context.Context) error
}

type entry struct {
	Answer    string
	Model     string
	CreatedAt time.Time
}

// Cache implements Service on go-cache
type Cache struct {
	enabled bool
	cache   *cache.Cache
	logger  *logrus.Logger
	maxSize int
}

// NewCache creates a new cache service
func NewCache(cfg *config.CacheConfig, logger *logrus.Logger) Service {
	if !cfg.Enabled {
		return &Cache{enabled: false}
	}

	return &Cache{
		enabled: true,
		cache:   cache.New(cfg.TTL, cfg.TTL*2),
		logger:  logger,
		maxSize: cfg.MaxSize,
	}
}

// Get retrieves a cached response
func (c *Cache) Get(ctx context.Context, model, system, prompt string) (string, bool) {
	if !c.enabled {
		return "", false
	}

	key := generateKey(model, system, prompt)
	if val, found := c.cache.Get(key); found {
		e := val.(*entry)
		c.logger.WithFields(logrus.Fields{
			"model": model,
			"age":   time.Since(e.CreatedAt),
		}).Debug("Cache hit")
		return e.Answer, true
	}

	return "", false
}

// Set stores a response in cache
func (c *Cache) Set(ctx context.Context, model, system, prompt, answer string) error {
	if !c.enabled {
		return nil
	}

	if c.maxSize > 0 && c.cache.ItemCount() >= c.maxSize {
		c.cache.DeleteExpired()
		if c.cache.ItemCount() >= c.maxSize {
			c.logger.Warn("Cache size limit reached, skipping store")
			return nil
		}
	}

	c.cache.SetDefault(generateKey(model, system, prompt), &entry{
		Answer:    answer,
		Model:     model,
		CreatedAt: time.Now(),
	})
	c.logger.WithField("model", model).Debug("Response cached")

	return nil
}

// Clear removes all cached entries
func (c *Cache) Clear(ctx context.Context) error {
	if !c.enabled {
		return nil
	}

	c.cache.Flush()
	c.logger.Info("Cache cleared")
	return nil
}

func generateKey(model, system, prompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(system))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}
