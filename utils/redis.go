package utils

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}

// Cache is a JSON read-through cache on Redis. Cached query results live under a
// namespace whose version counter is bumped to invalidate every key at once.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) GetCached(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, dest)
}

func (c *Cache) SetCached(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Version returns the current generation of namespace ns.
func (c *Cache) Version(ctx context.Context, ns string) (int64, error) {
	v, err := c.client.Get(ctx, ns+":version").Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Invalidate bumps the namespace version so older keys are never read again.
// They expire on their own TTL.
func (c *Cache) Invalidate(ctx context.Context, ns string) error {
	return c.client.Incr(ctx, ns+":version").Err()
}

// QueryKey builds a cache key for ns at its current version from the query params.
func (c *Cache) QueryKey(ctx context.Context, ns string, params map[string]string) (string, error) {
	version, err := c.Version(ctx, ns)
	if err != nil {
		return "", err
	}
	return GenerateQueryCacheKey(ns+":v"+strconv.FormatInt(version, 10), params), nil
}

// PutToken stores a one-time token value with its own TTL.
func (c *Cache) PutToken(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// TakeToken returns and deletes a token atomically. ok is false when it is absent.
func (c *Cache) TakeToken(ctx context.Context, key string) (value string, ok bool, err error) {
	value, err = c.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func GenerateQueryCacheKey(prefix string, queryParams map[string]string) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for i, k := range keys {
		if i > 0 {
			builder.WriteString(":")
		}
		builder.WriteString(k)
		builder.WriteString("=")
		builder.WriteString(queryParams[k])
	}

	hash := md5.Sum([]byte(builder.String()))
	return prefix + ":" + hex.EncodeToString(hash[:])
}
