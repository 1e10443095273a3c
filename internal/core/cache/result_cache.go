// Package cache holds the Redis-backed search result cache. Searching is the
// hot path and the TF-IDF pass over the whole corpus is the expensive part,
// so identical queries are answered from cached recipe ID lists.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ResultCache stores ordered recipe ID lists keyed by search input.
type ResultCache struct {
	client *redis.Client
	config *config.CacheConfig
}

// NewResultCache connects to Redis per config. With caching disabled it
// returns a cache whose operations report typed misses instead of touching
// the network.
func NewResultCache(cfg *config.CacheConfig) (*ResultCache, error) {
	if !cfg.Enabled {
		return &ResultCache{config: cfg}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ResultCache{
		client: client,
		config: cfg,
	}, nil
}

// Get returns the cached recipe ID list for a search, or ErrCacheMiss /
// ErrCacheDisabled.
func (c *ResultCache) Get(ctx context.Context, ingredients, dietary []string) ([]int, error) {
	if !c.config.Enabled || c.client == nil {
		return nil, common.ErrCacheDisabled
	}

	key := searchKey(ingredients, dietary)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			common.LogCacheMiss("search", key)
			return nil, common.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache: %w", err)
	}

	common.LogCacheHit("search", key)
	return ids, nil
}

// Set stores the recipe ID list for a search. Disabled cache is a no-op.
func (c *ResultCache) Set(ctx context.Context, ingredients, dietary []string, ids []int) error {
	if !c.config.Enabled || c.client == nil {
		return nil
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal ids: %w", err)
	}

	key := searchKey(ingredients, dietary)
	if err := c.client.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *ResultCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// searchKey derives a stable key from the search inputs: both lists are
// lowercased and sorted first, so ingredient order and casing never split
// the cache.
func searchKey(ingredients, dietary []string) string {
	normIngredients := normalizeKeyPart(ingredients)
	normDietary := normalizeKeyPart(dietary)

	h := sha256.New()
	h.Write([]byte(strings.Join(normIngredients, ",")))
	h.Write([]byte{'|'})
	h.Write([]byte(strings.Join(normDietary, ",")))

	return "search:results:" + hex.EncodeToString(h.Sum(nil))
}

func normalizeKeyPart(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// LogStats logs cache availability at startup.
func (c *ResultCache) LogStats() {
	common.LogInfo("result cache ready",
		zap.Bool("enabled", c.config.Enabled),
		zap.String("addr", c.config.Addr),
		zap.Duration("ttl", c.config.TTL),
	)
}
