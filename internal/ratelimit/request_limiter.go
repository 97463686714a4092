package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bizzy604/HIS-sub000/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyRequestProvider = "his:ratelimit:provider:%s"

// RequestLimiter throttles write traffic per provider. A nil limiter (no
// redis configured) allows everything.
type RequestLimiter struct {
	enabled bool
	bucket  *TokenBucket
	rate    float64
	burst   int
}

func NewRequestLimiter(cfg config.Config) *RequestLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	rate := cfg.RateLimitRPS
	if rate <= 0 {
		rate = 10
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 20
	}

	return &RequestLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    rate,
		burst:   burst,
	}
}

func (l *RequestLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Allow consumes one token for the provider. Fails open when redis is
// unreachable so an outage does not take writes down with it.
func (l *RequestLimiter) Allow(ctx context.Context, providerID string) (bool, time.Duration, error) {
	if !l.Enabled() {
		return true, 0, nil
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyRequestProvider, strings.TrimSpace(providerID)), l.rate, l.burst)
	if err != nil {
		return true, 0, err
	}
	return res.Allowed, res.RetryAfter, nil
}
