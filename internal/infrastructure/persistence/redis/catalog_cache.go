package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/redis/go-redis/v9"
)

// catalogVersionKey 目录缓存版本号，后台写操作INCR使旧缓存全部失效
const catalogVersionKey = "catalog:version"

// CatalogCache 首页、书系等目录数据的cache-aside缓存
// 缓存读写失败只记日志，调用方回源数据库
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *gecho.Logger
}

func NewCatalogCache(client *redis.Client, ttl time.Duration, logger *gecho.Logger) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl, logger: logger}
}

func (c *CatalogCache) key(ctx context.Context, name string) (string, error) {
	version, err := c.client.Get(ctx, catalogVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("catalog:v%d:%s", version, name), nil
}

// Get 命中时把JSON解码到dest并返回true
func (c *CatalogCache) Get(ctx context.Context, name string, dest interface{}) bool {
	key, err := c.key(ctx, name)
	if err != nil {
		c.logger.Warn("读取目录缓存版本失败", gecho.Field("error", err.Error()))
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("读取目录缓存失败", gecho.Field("key", key), gecho.Field("error", err.Error()))
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("目录缓存数据损坏", gecho.Field("key", key), gecho.Field("error", err.Error()))
		return false
	}
	return true
}

func (c *CatalogCache) Set(ctx context.Context, name string, value interface{}) {
	key, err := c.key(ctx, name)
	if err != nil {
		c.logger.Warn("读取目录缓存版本失败", gecho.Field("error", err.Error()))
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("序列化目录缓存失败", gecho.Field("key", key), gecho.Field("error", err.Error()))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("写入目录缓存失败", gecho.Field("key", key), gecho.Field("error", err.Error()))
	}
}

// Invalidate 版本号加一，旧key等TTL过期
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, catalogVersionKey).Err(); err != nil {
		c.logger.Error("目录缓存失效失败", gecho.Field("error", err.Error()))
	}
}
