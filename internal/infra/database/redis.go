package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

func NewRedis(addr string, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 2 * time.Second,
	})
}

// PingRedis reports whether the server answers before ctx expires.
func PingRedis(ctx context.Context, rdb *redis.Client) error {
	err := rdb.Ping(ctx).Err()
	if err != nil {
		return errors.Wrapf(err, "redis %s unreachable", rdb.Options().Addr)
	}
	return nil
}
