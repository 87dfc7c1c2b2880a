package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist 记录已注销（logout / refresh 换出）的 jti
type Denylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type RedisDenylist struct {
	RDB    *redis.Client
	Prefix string
}

func NewRedisDenylist(rdb *redis.Client) *RedisDenylist {
	return &RedisDenylist{RDB: rdb, Prefix: "jwt:revoked:"}
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		// 已过期的 token 本身就不可用
		return nil
	}
	return d.RDB.Set(ctx, d.Prefix+jti, 1, ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.RDB.Exists(ctx, d.Prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
