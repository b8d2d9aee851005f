package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/redis/go-redis/v9"
)

const permissionKeyPrefix = "permissions:user:"

func PermissionKey(userID string) string {
	return permissionKeyPrefix + userID
}

// RedisPermissionCache shares permission overrides between API instances.
// Redis failures are logged and treated as cache misses.
type RedisPermissionCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

var _ permission.Cache = (*RedisPermissionCache)(nil)

func NewRedisPermissionCache(rdb redis.Cmdable, ttl time.Duration) *RedisPermissionCache {
	return &RedisPermissionCache{rdb: rdb, ttl: ttl}
}

// Connect opens a client and pings it once.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	slog.Info("Connected to Redis", "addr", addr, "db", db)
	return rdb, nil
}

func (c *RedisPermissionCache) Get(ctx context.Context, userID string) (permission.CustomUserPermissions, bool) {
	cached, err := c.rdb.Get(ctx, PermissionKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("Permission cache read failed", "user_id", userID, "error", err)
		}
		return permission.CustomUserPermissions{}, false
	}

	var custom permission.CustomUserPermissions
	if err := json.Unmarshal([]byte(cached), &custom); err != nil {
		slog.Warn("Permission cache entry is corrupt", "user_id", userID, "error", err)
		return permission.CustomUserPermissions{}, false
	}
	return custom, true
}

func (c *RedisPermissionCache) Set(ctx context.Context, custom permission.CustomUserPermissions) {
	data, err := json.Marshal(custom)
	if err != nil {
		slog.Warn("Permission cache encode failed", "user_id", custom.UserID, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, PermissionKey(custom.UserID), string(data), c.ttl).Err(); err != nil {
		slog.Warn("Permission cache write failed", "user_id", custom.UserID, "error", err)
	}
}

func (c *RedisPermissionCache) Delete(ctx context.Context, userID string) {
	if err := c.rdb.Del(ctx, PermissionKey(userID)).Err(); err != nil {
		slog.Error("Permission cache invalidation failed", "user_id", userID, "error", err)
	}
}

// Clear removes every permission entry with SCAN so other keys in the DB survive.
func (c *RedisPermissionCache) Clear(ctx context.Context) {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, permissionKeyPrefix+"*", 200).Result()
		if err != nil {
			slog.Error("Permission cache clear failed", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				slog.Error("Permission cache clear failed", "error", err)
				return
			}
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}
