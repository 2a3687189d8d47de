package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/pkg/errors"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
	"github.com/yojahny55/gta-6-launch-date-sub001/httperrors"
	"github.com/yojahny55/gta-6-launch-date-sub001/request"
)

type RateLimiter interface {
	Check(ctx context.Context, clientHash string, resource string) domain.RateLimitResult
}

func RateLimit(limiter RateLimiter, resource string) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			clientHash, err := ctx.ClientHash()
			if err != nil {
				return errors.WithMessage(err, "rate limit: get client hash")
			}

			result := limiter.Check(ctx.Context(), clientHash, resource)
			if !result.Allow {
				retryAfterSec := int64(math.Ceil(result.RetryAfter.Seconds()))
				if retryAfterSec < 1 {
					retryAfterSec = 1
				}
				return httperrors.New(
					http.StatusTooManyRequests,
					domain.ErrCodeRateLimitExceeded,
					fmt.Sprintf("You're submitting too quickly. Please wait %d seconds and try again.", retryAfterSec),
					errors.Errorf("rate limit: limit has been reached for resource '%s'", resource),
				).
					WithHeader("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit)).
					WithHeader("X-RateLimit-Remaining", "0").
					WithHeader("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetAt.Unix())).
					WithHeader("Retry-After", fmt.Sprintf("%d", retryAfterSec))
			}

			return next.Handle(ctx)
		})
	}
}
