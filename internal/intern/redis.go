package intern

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisPool shares pooled strings across server restarts and, in a
// multi-server deployment, across processes. Content is addressed by
// xxhash so two servers interning the same command collapse to one key.
type RedisPool struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPool dials addr and verifies connectivity before returning.
func NewRedisPool(ctx context.Context, addr, password string) (*RedisPool, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		PoolSize:     50,
		MinIdleConns: 10,
		PoolTimeout:  time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("intern: failed to connect to redis: %w", err)
	}

	return &RedisPool{client: client, ttl: 24 * time.Hour}, nil
}

func (p *RedisPool) key(s string) string {
	return "kickoff:intern:" + strconv.FormatUint(xxhash.Sum64String(s), 16)
}

func (p *RedisPool) Intern(s string) (string, error) {
	ctx := context.Background()
	key := p.key(s)

	if raw, err := p.client.Get(ctx, key).Bytes(); err == nil {
		var existing string
		if err := msgpack.Unmarshal(raw, &existing); err == nil {
			return existing, nil
		}
	}

	b, err := msgpack.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("intern: failed to marshal value: %w", err)
	}
	if err := p.client.Set(ctx, key, b, p.ttl).Err(); err != nil {
		return "", fmt.Errorf("intern: failed to store value: %w", err)
	}
	return s, nil
}

// Close releases the underlying redis connection pool.
func (p *RedisPool) Close() error {
	return p.client.Close()
}
