package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps each visitor's keys in a Redis hash named
// <prefix>:<visitor id>. The visitor id travels in the signed cookie.
type RedisBackend struct {
	Client *redis.Client
	Prefix string
	// TTL is refreshed on every write. Zero keeps the hash forever.
	TTL time.Duration
}

func (b *RedisBackend) Name() string { return "redis" }

func (b *RedisBackend) Storage(c *gin.Context) (Storage, error) {
	id, err := visitorID(c)
	if err != nil {
		return nil, fmt.Errorf("resolve visitor id: %w", err)
	}
	return b.ForVisitor(id), nil
}

// ForVisitor returns the storage of one visitor id.
func (b *RedisBackend) ForVisitor(id string) Storage {
	prefix := b.Prefix
	if prefix == "" {
		prefix = "fieldops:session"
	}
	return &redisStorage{rdb: b.Client, key: prefix + ":" + id, ttl: b.TTL}
}

type redisStorage struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func (st *redisStorage) Get(ctx context.Context, field string) (string, bool, error) {
	v, err := st.rdb.HGet(ctx, st.key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget %s: %w", field, err)
	}
	return v, true, nil
}

func (st *redisStorage) Set(ctx context.Context, field, value string) error {
	_, err := st.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, st.key, field, value)
		if st.ttl > 0 {
			pipe.Expire(ctx, st.key, st.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset %s: %w", field, err)
	}
	return nil
}

func (st *redisStorage) Remove(ctx context.Context, field string) error {
	if err := st.rdb.HDel(ctx, st.key, field).Err(); err != nil {
		return fmt.Errorf("redis hdel %s: %w", field, err)
	}
	return nil
}
