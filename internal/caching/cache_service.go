package caching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"innkeeper/internal/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "innkeeper"

// CacheService memoizes expensive read paths. Every key is namespaced by
// tenant so one tenant's cached data can never be served to another; the
// namespace is a second, independent enforcement of the store's isolation
// invariant. Invalidation by tag is synchronous: writers call Invalidate
// before acknowledging the write.
type CacheService interface {
	// Get returns the cached value or (nil, nil) on miss.
	Get(ctx context.Context, tenantID uuid.UUID, key string) ([]byte, error)
	// Put stores value under the tenant-namespaced key and registers it with
	// each tag for later invalidation.
	Put(ctx context.Context, tenantID uuid.UUID, key string, value []byte, ttl time.Duration, tags ...string) error
	// Invalidate removes every entry registered under (tenant, tag).
	Invalidate(ctx context.Context, tenantID uuid.UUID, tag string) error
	// InvalidateTenant removes every cached entry of the tenant.
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error

	// Plain string operations for credential storage (refresh token hashes).
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisCacheService connects a go-redis client. Accepts either a bare
// host:port or a redis://host:port URL.
func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})
	return &redisCacheService{client: client}
}

// NewRedisCacheServiceWithClient wraps an existing client. Used by tests.
func NewRedisCacheServiceWithClient(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func entryKey(tenantID uuid.UUID, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, tenantID.String(), key)
}

func tagKey(tenantID uuid.UUID, tag string) string {
	return fmt.Sprintf("%s:%s:tag:%s", keyPrefix, tenantID.String(), tag)
}

func (r *redisCacheService) Get(ctx context.Context, tenantID uuid.UUID, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, entryKey(tenantID, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheOp("miss")
			return nil, nil // cache miss
		}
		return nil, err
	}
	metrics.RecordCacheOp("hit")
	return data, nil
}

func (r *redisCacheService) Put(ctx context.Context, tenantID uuid.UUID, key string, value []byte, ttl time.Duration, tags ...string) error {
	full := entryKey(tenantID, key)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, full, value, ttl)
	for _, tag := range tags {
		tk := tagKey(tenantID, tag)
		pipe.SAdd(ctx, tk, full)
		// Tag sets outlive their newest member slightly so invalidation
		// still finds expired keys.
		pipe.Expire(ctx, tk, ttl+time.Minute)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisCacheService) Invalidate(ctx context.Context, tenantID uuid.UUID, tag string) error {
	tk := tagKey(tenantID, tag)
	members, err := r.client.SMembers(ctx, tk).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	if len(members) > 0 {
		if err := r.client.Del(ctx, members...).Err(); err != nil {
			return err
		}
	}
	if err := r.client.Del(ctx, tk).Err(); err != nil {
		return err
	}
	metrics.RecordCacheOp("invalidation")
	return nil
}

func (r *redisCacheService) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, tenantID.String())
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			metrics.RecordCacheOp("flush")
			return nil
		}
		cursor = next
	}
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, fmt.Sprintf("%s:%s", keyPrefix, key), value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, fmt.Sprintf("%s:%s", keyPrefix, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // not found
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, fmt.Sprintf("%s:%s", keyPrefix, key)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
