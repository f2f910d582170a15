package auth

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-admin/internal/config"
)

// SignInLimiter throttles sign-in attempts per client key. A nil limiter
// allows everything.
type SignInLimiter struct {
	limiter *limiter.Limiter
}

// NewSignInLimiter builds the limiter from config; Redis is used when the
// storage is "redis", falling back to memory if the store cannot be created.
func NewSignInLimiter(cfg config.RateLimitConfig, client *redis.Client, logger *zap.Logger) (*SignInLimiter, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	rate, err := limiter.NewRateFromFormatted(cfg.SignInRate)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SIGN_IN %q: %w", cfg.SignInRate, err)
	}

	var store limiter.Store
	if cfg.Storage == config.StoreRedis && client != nil {
		store, err = redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:   "staff-admin:limiter:sign-in",
			MaxRetry: 3,
		})
		if err != nil {
			logger.Warn("failed to create redis rate limit store, falling back to memory", zap.Error(err))
			store = nil
		}
	}
	if store == nil {
		store = memorystore.NewStore()
	}
	return &SignInLimiter{limiter: limiter.New(store, rate)}, nil
}

// Allow consumes one attempt for key and reports whether it is within the limit.
func (l *SignInLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.limiter == nil {
		return true, nil
	}
	res, err := l.limiter.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return !res.Reached, nil
}
