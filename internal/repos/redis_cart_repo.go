package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cafeteria/internal/domain"
)

const (
	// keyCart: cafeteria:cart:{session_id} -> JSON encoded domain.Cart
	keyCart = "cafeteria:cart:%s"

	TTLCart = 24 * time.Hour
)

func NewRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 2 * time.Second})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// RedisCartRepo keeps carts in Redis so several app instances can share
// sessions. Entries expire after TTLCart of inactivity.
type RedisCartRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCartRepo(rdb *redis.Client) *RedisCartRepo {
	return &RedisCartRepo{rdb: rdb, ttl: TTLCart}
}

func (r *RedisCartRepo) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	raw, err := r.rdb.Get(ctx, fmt.Sprintf(keyCart, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, err
	}
	var c domain.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Cart{}, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	return c, nil
}

func (r *RedisCartRepo) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, fmt.Sprintf(keyCart, sessionID), raw, r.ttl).Err()
}

func (r *RedisCartRepo) Clear(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, fmt.Sprintf(keyCart, sessionID)).Err()
}
