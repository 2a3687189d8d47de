package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/test"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
	"github.com/yojahny55/gta-6-launch-date-sub001/service"
)

type capacityRepoStub struct {
	countByDay map[string]int64
	err        error
}

func newCapacityRepoStub() *capacityRepoStub {
	return &capacityRepoStub{
		countByDay: map[string]int64{},
	}
}

func (s *capacityRepoStub) Increment(_ context.Context, today time.Time) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	key := today.UTC().Format("2006-01-02")
	s.countByDay[key]++
	return s.countByDay[key], nil
}

func (s *capacityRepoStub) Get(_ context.Context, today time.Time) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.countByDay[today.UTC().Format("2006-01-02")], nil
}

func TestCapacityLevels(t *testing.T) {
	t.Parallel()
	test, require := test.New(t)

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	repo := newCapacityRepoStub()
	capacity := service.NewCapacity(repo, 100000, clock, test.Logger())

	cases := []struct {
		requestsToday int64
		expected      domain.CapacityLevel
	}{
		{70000, domain.LevelNormal},
		{80000, domain.LevelElevated},
		{90000, domain.LevelHigh},
		{95000, domain.LevelCritical},
		{100000, domain.LevelExceeded},
	}
	for _, c := range cases {
		repo.countByDay["2026-04-01"] = c.requestsToday
		state := capacity.State(context.Background())
		require.EqualValues(c.expected, state.Level, "requestsToday %d", c.requestsToday)
		require.EqualValues(c.requestsToday, state.RequestsToday)
		require.EqualValues(100000, state.LimitToday)
		require.EqualValues("2026-04-01", state.Day)
	}
}

func TestCapacityRecordIncrements(t *testing.T) {
	t.Parallel()
	test, require := test.New(t)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))
	repo := newCapacityRepoStub()
	capacity := service.NewCapacity(repo, 100, clock, test.Logger())

	state := capacity.Record(context.Background())
	require.EqualValues(1, state.RequestsToday)
	state = capacity.Record(context.Background())
	require.EqualValues(2, state.RequestsToday)

	// State does not consume budget
	state = capacity.State(context.Background())
	require.EqualValues(2, state.RequestsToday)
}

// the level is a pure function of the live ratio, a spike may recede
// within the same day
func TestCapacityLevelIsNotSticky(t *testing.T) {
	t.Parallel()
	test, require := test.New(t)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))
	repo := newCapacityRepoStub()
	capacity := service.NewCapacity(repo, 100000, clock, test.Logger())

	repo.countByDay["2026-04-01"] = 95000
	require.EqualValues(domain.LevelCritical, capacity.State(context.Background()).Level)

	// counter TTL-expired mid-day in a degenerate case: level follows the ratio down
	repo.countByDay["2026-04-01"] = 1000
	require.EqualValues(domain.LevelNormal, capacity.State(context.Background()).Level)
}

func TestCapacityDayRollover(t *testing.T) {
	t.Parallel()
	test, require := test.New(t)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 4, 1, 23, 59, 0, 0, time.UTC))
	repo := newCapacityRepoStub()
	capacity := service.NewCapacity(repo, 100, clock, test.Logger())

	repo.countByDay["2026-04-01"] = 100
	require.EqualValues(domain.LevelExceeded, capacity.State(context.Background()).Level)

	clock.Advance(2 * time.Minute)

	state := capacity.State(context.Background())
	require.EqualValues(domain.LevelNormal, state.Level)
	require.EqualValues(0, state.RequestsToday)
	require.EqualValues("2026-04-02", state.Day)
}

func TestCapacityFailsOpenToNormal(t *testing.T) {
	t.Parallel()
	test, require := test.New(t)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))
	repo := newCapacityRepoStub()
	repo.err = errors.WithMessage(domain.ErrStoreUnavailable, "connection refused")
	capacity := service.NewCapacity(repo, 100, clock, test.Logger())

	require.EqualValues(domain.LevelNormal, capacity.Record(context.Background()).Level)
	require.EqualValues(domain.LevelNormal, capacity.State(context.Background()).Level)

	// an unexpected error must never escalate the level either
	repo.err = errors.New("unexpected value type")
	require.EqualValues(domain.LevelNormal, capacity.Record(context.Background()).Level)
	require.EqualValues(domain.LevelNormal, capacity.State(context.Background()).Level)
}

func TestCapacityUntilReset(t *testing.T) {
	t.Parallel()
	test, require := test.New(t)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 4, 1, 21, 0, 0, 0, time.UTC))
	capacity := service.NewCapacity(newCapacityRepoStub(), 100, clock, test.Logger())

	require.EqualValues(3*time.Hour, capacity.UntilReset())
}
