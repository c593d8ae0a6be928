package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrLimited means the failed-login budget for the identity or IP is spent.
	ErrLimited = errors.New("login attempts exceeded")
	// ErrUnavailable wraps Redis failures.
	ErrUnavailable = errors.New("attempt store unavailable")
)

// LoginAttemptsConfig tunes the failed-login budget.
type LoginAttemptsConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// LoginAttempts counts failed logins per identity and per client IP in
// fixed windows stored in Redis.
type LoginAttempts struct {
	redis  redis.UniversalClient
	config LoginAttemptsConfig
}

// NewLoginAttempts creates a limiter backed by the given Redis client.
func NewLoginAttempts(client redis.UniversalClient, cfg LoginAttemptsConfig) *LoginAttempts {
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	return &LoginAttempts{redis: client, config: cfg}
}

// Check returns ErrLimited once either counter has reached the budget.
// A non-positive budget disables limiting.
func (l *LoginAttempts) Check(ctx context.Context, identity, ip string) error {
	if l == nil || l.config.MaxAttempts <= 0 {
		return nil
	}
	for _, key := range l.keys(identity, ip) {
		count, err := l.redis.Get(ctx, key).Int64()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if count >= int64(l.config.MaxAttempts) {
			return ErrLimited
		}
	}
	return nil
}

// RecordFailure increments both counters, starting the window on the first hit.
func (l *LoginAttempts) RecordFailure(ctx context.Context, identity, ip string) error {
	if l == nil || l.config.MaxAttempts <= 0 {
		return nil
	}
	for _, key := range l.keys(identity, ip) {
		count, err := l.redis.Incr(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if count == 1 {
			if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
		}
	}
	return nil
}

// Reset clears the identity counter after a successful login. The IP counter
// is left alone so one good account cannot launder guesses against others.
func (l *LoginAttempts) Reset(ctx context.Context, identity string) error {
	if l == nil || l.config.MaxAttempts <= 0 {
		return nil
	}
	if err := l.redis.Del(ctx, identityKey(identity)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (l *LoginAttempts) keys(identity, ip string) []string {
	keys := []string{identityKey(identity)}
	if ip != "" {
		keys = append(keys, "portal:login:ip:"+ip)
	}
	return keys
}

func identityKey(identity string) string {
	return "portal:login:id:" + strings.ToLower(strings.TrimSpace(identity))
}
