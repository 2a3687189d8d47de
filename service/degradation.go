package service

import (
	"context"
	"sync"
	"time"

	"github.com/txix-open/isp-kit/log"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
)

const statsResource = "stats"

type CacheTtlSetter interface {
	SetCacheTtl(resource string, ttl time.Duration)
}

// Degradation maps the capacity level to feature flags and logs every level
// transition within a day. The remembered level is a logging aid only, the
// flags themselves are recomputed from the live level on every call.
type Degradation struct {
	cacheTtl     CacheTtlSetter
	statsBaseTtl time.Duration
	logger       log.Logger

	lock      sync.Mutex
	lastDay   string
	lastLevel domain.CapacityLevel
	observed  bool
}

func NewDegradation(cacheTtl CacheTtlSetter, statsBaseTtl time.Duration, logger log.Logger) *Degradation {
	return &Degradation{
		cacheTtl:     cacheTtl,
		statsBaseTtl: statsBaseTtl,
		logger:       logger,
	}
}

func (s *Degradation) Observe(ctx context.Context, state domain.CapacityState) domain.FeatureFlags {
	flags := domain.FlagsForLevel(state.Level)

	s.lock.Lock()
	dayChanged := s.lastDay != state.Day
	levelChanged := !s.observed || dayChanged || s.lastLevel != state.Level
	previous := s.lastLevel
	if dayChanged {
		previous = domain.LevelNormal
	}
	s.lastDay = state.Day
	s.lastLevel = state.Level
	s.observed = true
	s.lock.Unlock()

	if levelChanged {
		s.logger.Info(ctx, "capacity level changed",
			log.String("from", previous.String()),
			log.String("to", state.Level.String()),
			log.Int64("requestsToday", state.RequestsToday),
			log.Int64("limitToday", state.LimitToday),
			log.String("day", state.Day),
		)
		s.cacheTtl.SetCacheTtl(statsResource, s.statsBaseTtl*time.Duration(flags.CacheTtlMultiplier))
	}

	return flags
}
