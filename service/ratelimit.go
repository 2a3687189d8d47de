package service

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"github.com/yojahny55/gta-6-launch-date-sub001/conf"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
)

type WindowCounterRepo interface {
	IncrementAndGet(ctx context.Context, clientHash string, resource string, ttl time.Duration) (int64, time.Time, error)
}

type RateLimit struct {
	repo   WindowCounterRepo
	limits map[string]conf.RateLimit
	clock  clockwork.Clock
	logger log.Logger
}

func NewRateLimit(repo WindowCounterRepo, configs []conf.RateLimit, clock clockwork.Clock, logger log.Logger) RateLimit {
	limits := make(map[string]conf.RateLimit)
	for _, config := range configs {
		limits[config.Resource] = config
	}
	return RateLimit{
		repo:   repo,
		limits: limits,
		clock:  clock,
		logger: logger,
	}
}

// Check never blocks traffic on store failures: when the window counter is
// unreachable the request is admitted and the event is logged (fail-open).
func (s RateLimit) Check(ctx context.Context, clientHash string, resource string) domain.RateLimitResult {
	limit, ok := s.limits[resource]
	if !ok {
		return domain.RateLimitResult{
			Allow:     true,
			Remaining: -1,
		}
	}

	window := time.Duration(limit.WindowInSec) * time.Second
	count, expiresAt, err := s.repo.IncrementAndGet(ctx, clientHash, resource, window)
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		s.logger.Warn(ctx, "rate limit check failed open, store is unavailable",
			log.String("resource", resource),
			log.String("error", err.Error()),
		)
		return domain.RateLimitResult{
			Allow:      true,
			Limit:      limit.MaxCount,
			Remaining:  -1,
			FailedOpen: true,
		}
	case err != nil:
		s.logger.Error(ctx, "rate limit check failed, admitting request",
			log.String("resource", resource),
			log.String("error", err.Error()),
		)
		return domain.RateLimitResult{
			Allow:     true,
			Limit:     limit.MaxCount,
			Remaining: -1,
		}
	}

	if count > limit.MaxCount {
		retryAfter := expiresAt.Sub(s.clock.Now())
		if retryAfter < 0 {
			retryAfter = 0
		}
		return domain.RateLimitResult{
			Allow:      false,
			Limit:      limit.MaxCount,
			Remaining:  0,
			ResetAt:    expiresAt,
			RetryAfter: retryAfter,
		}
	}

	return domain.RateLimitResult{
		Allow:     true,
		Limit:     limit.MaxCount,
		Remaining: limit.MaxCount - count,
		ResetAt:   expiresAt,
	}
}
