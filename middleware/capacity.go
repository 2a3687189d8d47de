package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
	"github.com/yojahny55/gta-6-launch-date-sub001/httperrors"
	"github.com/yojahny55/gta-6-launch-date-sub001/request"
)

type CapacityTracker interface {
	Record(ctx context.Context) domain.CapacityState
	UntilReset() time.Duration
}

type FlagsObserver interface {
	Observe(ctx context.Context, state domain.CapacityState) domain.FeatureFlags
}

// Capacity counts the request against the daily budget and resolves the
// feature flags for downstream handlers.
func Capacity(tracker CapacityTracker, observer FlagsObserver) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			state := tracker.Record(ctx.Context())
			flags := observer.Observe(ctx.Context(), state)
			ctx.SetCapacity(state, flags)
			return next.Handle(ctx)
		})
	}
}

// CapacityGuard rejects writes once the daily budget is fully spent.
// This rejection is distinct from a rate-limit denial: it names the daily
// budget and counts down to the UTC midnight reset.
func CapacityGuard(tracker CapacityTracker) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			state, _, err := ctx.Capacity()
			if err != nil {
				return errors.WithMessage(err, "capacity guard: get capacity state")
			}

			if state.Level >= domain.LevelExceeded {
				hoursLeft := int64(math.Ceil(tracker.UntilReset().Hours()))
				if hoursLeft < 1 {
					hoursLeft = 1
				}
				return httperrors.New(
					http.StatusServiceUnavailable,
					domain.ErrCodeCapacityExceeded,
					fmt.Sprintf("We've reached capacity for today. Try again in %d hours.", hoursLeft),
					errors.Errorf("capacity guard: daily budget has been spent, day '%s'", state.Day),
				).
					WithHeader("Retry-After", fmt.Sprintf("%d", int64(tracker.UntilReset().Seconds())))
			}

			return next.Handle(ctx)
		})
	}
}
