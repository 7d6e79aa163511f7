package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/redmonkez12/go-accounts-api/internal/config"
)

// Limiter keeps fixed-window request counters and email cooldowns in Redis
type Limiter struct {
	client        redis.Cmdable
	ipLimit       int
	window        time.Duration
	emailCooldown time.Duration
}

func NewLimiter(client redis.Cmdable, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		client:        client,
		ipLimit:       cfg.IPLimit,
		window:        cfg.Window,
		emailCooldown: cfg.EmailCooldown,
	}
}

func ipKey(ip, purpose string) string {
	return fmt.Sprintf("rate_limit:%s:%s", purpose, ip)
}

func emailCooldownKey(email string) string {
	return fmt.Sprintf("email_cooldown:%s", strings.ToLower(strings.TrimSpace(email)))
}

// CheckIPRateLimitWithPurpose reports whether ip already used its quota for
// purpose in the current window
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	if l.ipLimit <= 0 {
		return false, nil
	}

	count, err := l.client.Get(ctx, ipKey(ip, purpose)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read rate limit counter: %w", err)
	}

	return count >= l.ipLimit, nil
}

// RecordIPRequestWithPurpose counts one request. The window starts with the
// first request.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	key := ipKey(ip, purpose)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("failed to set TTL on rate limit counter: %w", err)
		}
	}

	return nil
}

// CheckEmailCooldown reports whether an email was sent to the address recently
func (l *Limiter) CheckEmailCooldown(ctx context.Context, email string) (bool, error) {
	n, err := l.client.Exists(ctx, emailCooldownKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check email cooldown: %w", err)
	}
	return n > 0, nil
}

func (l *Limiter) SetEmailCooldown(ctx context.Context, email string) error {
	if l.emailCooldown <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, emailCooldownKey(email), 1, l.emailCooldown).Err(); err != nil {
		return fmt.Errorf("failed to set email cooldown: %w", err)
	}
	return nil
}

// Ping checks the connection, used at startup
func (l *Limiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
