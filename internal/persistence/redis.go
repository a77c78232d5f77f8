package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk/internal/config"
)

const revokedSessionPrefix = "helpdesk:session:revoked:"

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
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
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// Revoke marks a session token id as logged out until its natural expiry.
func (r *Redis) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.Client.Set(ctx, revokedSessionPrefix+tokenID, 1, ttl).Err()
}

// IsRevoked reports whether the session token id was logged out.
func (r *Redis) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if r == nil || r.Client == nil {
		return false, errors.New("redis client not configured")
	}
	n, err := r.Client.Exists(ctx, revokedSessionPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
