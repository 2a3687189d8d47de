package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/txix-open/isp-kit/test"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
	"github.com/yojahny55/gta-6-launch-date-sub001/service"
)

type cacheTtlStub struct {
	lock sync.Mutex
	ttls map[string]time.Duration
}

func newCacheTtlStub() *cacheTtlStub {
	return &cacheTtlStub{
		ttls: map[string]time.Duration{},
	}
}

func (s *cacheTtlStub) SetCacheTtl(resource string, ttl time.Duration) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.ttls[resource] = ttl
}

func (s *cacheTtlStub) Ttl(resource string) time.Duration {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.ttls[resource]
}

func TestDegradationAppliesCacheTtlMultiplier(t *testing.T) {
	t.Parallel()
	test, require := test.New(t)

	setter := newCacheTtlStub()
	degradation := service.NewDegradation(setter, 5*time.Minute, test.Logger())

	flags := degradation.Observe(context.Background(), domain.CapacityState{
		RequestsToday: 1, LimitToday: 100000, Level: domain.LevelNormal, Day: "2026-04-01",
	})
	require.True(flags.SubmissionsEnabled)
	require.EqualValues(5*time.Minute, setter.Ttl("stats"))

	flags = degradation.Observe(context.Background(), domain.CapacityState{
		RequestsToday: 90000, LimitToday: 100000, Level: domain.LevelHigh, Day: "2026-04-01",
	})
	require.False(flags.ChartEnabled)
	require.EqualValues(15*time.Minute, setter.Ttl("stats"))
}

func TestDegradationRecoversWithinDay(t *testing.T) {
	t.Parallel()
	test, require := test.New(t)

	setter := newCacheTtlStub()
	degradation := service.NewDegradation(setter, 5*time.Minute, test.Logger())

	degradation.Observe(context.Background(), domain.CapacityState{
		Level: domain.LevelCritical, Day: "2026-04-01",
	})
	flags := degradation.Observe(context.Background(), domain.CapacityState{
		Level: domain.LevelNormal, Day: "2026-04-01",
	})
	require.True(flags.SubmissionsEnabled)
	require.EqualValues(5*time.Minute, setter.Ttl("stats"))
}
