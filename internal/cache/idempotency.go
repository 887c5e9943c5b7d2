package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore 基于 Redis 的幂等键存储
// lock 键在处理期间占位，map 键记录成功结果（如订单ID）
type IdempotencyStore struct {
	ttl time.Duration
}

// NewIdempotencyStore 创建幂等存储
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{ttl: ttl}
}

// Available Redis 未启用时幂等校验整体跳过
func (s *IdempotencyStore) Available() bool {
	return s != nil && Enabled()
}

// TryLock 抢占幂等键，返回 false 表示已有请求在处理或已完成
func (s *IdempotencyStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	if !s.Available() {
		return true, nil
	}
	return redisClient.SetNX(ctx, lockKey(scope, key), "1", s.ttl).Result()
}

// Unlock 释放占位（处理失败时允许客户端重试）
func (s *IdempotencyStore) Unlock(ctx context.Context, scope, key string) error {
	if !s.Available() {
		return nil
	}
	return redisClient.Del(ctx, lockKey(scope, key)).Err()
}

// Remember 记录成功结果
func (s *IdempotencyStore) Remember(ctx context.Context, scope, key, value string) error {
	if !s.Available() {
		return nil
	}
	return redisClient.Set(ctx, mapKey(scope, key), value, s.ttl).Err()
}

// Recall 读取成功结果
func (s *IdempotencyStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	if !s.Available() {
		return "", false, nil
	}
	val, err := redisClient.Get(ctx, mapKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func lockKey(scope, key string) string {
	return BuildKey("idemp:" + strings.TrimSpace(scope) + ":" + strings.TrimSpace(key))
}

func mapKey(scope, key string) string {
	return BuildKey("idemp:map:" + strings.TrimSpace(scope) + ":" + strings.TrimSpace(key))
}
