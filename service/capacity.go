package service

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
)

const dayFormat = "2006-01-02"

type CapacityRepo interface {
	Increment(ctx context.Context, today time.Time) (int64, error)
	Get(ctx context.Context, today time.Time) (int64, error)
}

type Capacity struct {
	repo        CapacityRepo
	limitPerDay int64
	clock       clockwork.Clock
	logger      log.Logger
}

func NewCapacity(repo CapacityRepo, limitPerDay int64, clock clockwork.Clock, logger log.Logger) Capacity {
	return Capacity{
		repo:        repo,
		limitPerDay: limitPerDay,
		clock:       clock,
		logger:      logger,
	}
}

// Record counts the request against today's budget and returns the fresh state.
func (s Capacity) Record(ctx context.Context) domain.CapacityState {
	today := s.clock.Now().UTC()
	requestsToday, err := s.repo.Increment(ctx, today)
	if err != nil {
		return s.failOpen(ctx, today, err)
	}
	return s.state(today, requestsToday)
}

// State is read-only, it does not consume budget.
func (s Capacity) State(ctx context.Context) domain.CapacityState {
	today := s.clock.Now().UTC()
	requestsToday, err := s.repo.Get(ctx, today)
	if err != nil {
		return s.failOpen(ctx, today, err)
	}
	return s.state(today, requestsToday)
}

// UntilReset reports time left to the next UTC midnight, when the budget resets.
func (s Capacity) UntilReset() time.Duration {
	now := s.clock.Now().UTC()
	y, m, d := now.Date()
	midnight := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
	return midnight.Sub(now)
}

// state derives the level from the live ratio on every call. The level is not
// sticky: a quiet period after a spike moves it back down within the same day.
func (s Capacity) state(today time.Time, requestsToday int64) domain.CapacityState {
	ratio := float64(requestsToday) / float64(s.limitPerDay)
	return domain.CapacityState{
		RequestsToday: requestsToday,
		LimitToday:    s.limitPerDay,
		Level:         domain.LevelForRatio(ratio),
		Day:           today.Format(dayFormat),
	}
}

// failOpen assumes Normal when the lookup fails. Assuming Exceeded would
// turn a transient store blip into a full outage. Errors other than store
// unavailability indicate a defect and are logged at error level.
func (s Capacity) failOpen(ctx context.Context, today time.Time, err error) domain.CapacityState {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		s.logger.Warn(ctx, "capacity lookup failed open, store is unavailable",
			log.String("error", err.Error()),
		)
	} else {
		s.logger.Error(ctx, "capacity lookup failed, assuming normal level",
			log.String("error", err.Error()),
		)
	}
	return domain.CapacityState{
		RequestsToday: 0,
		LimitToday:    s.limitPerDay,
		Level:         domain.LevelNormal,
		Day:           today.Format(dayFormat),
	}
}
