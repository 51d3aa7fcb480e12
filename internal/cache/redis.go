package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/mediainsight/internal/config"
	"github.com/nikhilbhutani/mediainsight/internal/models"
)

// ResultCache stores structured results for processed links so repeated
// submissions of the same URL skip acquisition and transcription.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

func LinkKey(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return "link:" + hex.EncodeToString(sum[:])
}

// GetLink reports whether a cached result exists for url.
func (c *ResultCache) GetLink(ctx context.Context, url string) (*models.StructuredResult, bool, error) {
	key := LinkKey(url)
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var res models.StructuredResult
	if err := json.Unmarshal(val, &res); err != nil {
		return nil, false, fmt.Errorf("decode cached result: %w", err)
	}
	return &res, true, nil
}

func (c *ResultCache) PutLink(ctx context.Context, url string, res models.StructuredResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return c.client.Set(ctx, LinkKey(url), data, c.ttl).Err()
}

func (c *ResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
