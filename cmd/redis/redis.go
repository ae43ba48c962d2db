// Package redisclient opens the optional Redis connection that keeps the
// session token between runs.
package redisclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/akhdanrgya/teluhub-client/cmd/config"
	"github.com/redis/go-redis/v9"
)

// ErrDisabled is returned when no Redis host is configured.
var ErrDisabled = errors.New("redis disabled")

// Connect dials Redis and pings it within cfg.Timeout. The token store is
// optional, so the client gives up fast instead of retrying.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Host == "" || cfg.Host == "off" {
		return nil, ErrDisabled
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	c := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.Timeout,
		ReadTimeout: cfg.Timeout,
		MaxRetries:  -1,
		PoolSize:    2,
	})

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("unable to ping redis at %s: %w", addr, err)
	}
	return c, nil
}
