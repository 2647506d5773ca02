package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/erp-api/internal/usecase"
)

const (
	globalVersionKey   = "categories:ver:global"
	tenantVersionKeyFm = "categories:ver:tenant:%s"
	entryKeyFmt        = "categories:union:g%s:t%s:%s:%s"
)

// UnionCache caches merged category listing pages in Redis. Invalidation is
// by version counter: every write bumps the tenant (or global) version,
// which changes the key of every subsequent lookup and lets stale entries
// age out through the TTL. No SCAN, no key enumeration.
//
// All operations are best-effort: any Redis failure degrades to a cache miss
// and the engine recomputes from the store.
type UnionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewUnionCache creates a Redis-backed usecase.UnionCache.
func NewUnionCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *UnionCache {
	return &UnionCache{client: client, ttl: ttl, logger: logger}
}

func (c *UnionCache) versions(ctx context.Context, tenantID string) (string, string, error) {
	vals, err := c.client.MGet(ctx, globalVersionKey, fmt.Sprintf(tenantVersionKeyFm, tenantID)).Result()
	if err != nil {
		return "", "", err
	}
	ver := func(v interface{}) string {
		if s, ok := v.(string); ok {
			return s
		}
		return "0"
	}
	return ver(vals[0]), ver(vals[1]), nil
}

func (c *UnionCache) entryKey(ctx context.Context, tenantID, key string) (string, error) {
	gv, tv, err := c.versions(ctx, tenantID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(entryKeyFmt, gv, tv, tenantID, key), nil
}

func (c *UnionCache) Get(ctx context.Context, tenantID, key string) (*usecase.ListResult, bool) {
	entry, err := c.entryKey(ctx, tenantID, key)
	if err != nil {
		c.logger.Debug("union cache unavailable", "error", err)
		return nil, false
	}
	raw, err := c.client.Get(ctx, entry).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("union cache get failed", "error", err)
		}
		return nil, false
	}
	var res usecase.ListResult
	if err := json.Unmarshal(raw, &res); err != nil {
		c.logger.Warn("union cache entry corrupt, dropping", "key", entry, "error", err)
		_ = c.client.Del(ctx, entry).Err()
		return nil, false
	}
	return &res, true
}

func (c *UnionCache) Set(ctx context.Context, tenantID, key string, res *usecase.ListResult) {
	entry, err := c.entryKey(ctx, tenantID, key)
	if err != nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn("union cache marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, entry, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("union cache set failed", "error", err)
	}
}

func (c *UnionCache) InvalidateTenant(ctx context.Context, tenantID string) {
	if err := c.client.Incr(ctx, fmt.Sprintf(tenantVersionKeyFm, tenantID)).Err(); err != nil {
		c.logger.Warn("union cache tenant invalidation failed", "tenant_id", tenantID, "error", err)
	}
}

func (c *UnionCache) InvalidateAll(ctx context.Context) {
	if err := c.client.Incr(ctx, globalVersionKey).Err(); err != nil {
		c.logger.Warn("union cache global invalidation failed", "error", err)
	}
}
