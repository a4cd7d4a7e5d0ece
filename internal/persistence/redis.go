package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/record-service/internal/config"
)

// ErrRedisDisabled is returned by operations on a publisher that was never configured.
var ErrRedisDisabled = errors.New("redis client not configured")

// Redis wraps the go-redis client used to fan record changes out to other
// processes. A nil *Redis is a valid, disabled publisher.
type Redis struct {
	Client  *redis.Client
	channel string
}

// NewRedis connects to Redis when enabled. It returns nil when Redis is off.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if !cfg.Enabled {
		logger.Info("redis disabled; change notifications stay in-process")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client, channel: cfg.Channel}
}

// Channel returns the pub/sub channel change notifications go to.
func (r *Redis) Channel() string {
	if r == nil {
		return ""
	}
	return r.channel
}

// Publish sends payload on the configured channel.
func (r *Redis) Publish(ctx context.Context, payload []byte) error {
	if r == nil || r.Client == nil {
		return ErrRedisDisabled
	}
	return r.Client.Publish(ctx, r.channel, payload).Err()
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return ErrRedisDisabled
	}
	return r.Client.Ping(ctx).Err()
}
