package handler

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
	"github.com/yojahny55/gta-6-launch-date-sub001/httperrors"
	"github.com/yojahny55/gta-6-launch-date-sub001/request"
)

const statsCacheKey = "stats:aggregate"

type StatsSource interface {
	FetchStats(ctx context.Context) ([]byte, error)
}

type StatsCache interface {
	Get(key string) ([]byte, bool)
	GetStale(key string) ([]byte, bool)
	Set(resource string, key string, data []byte)
}

// Stats serves aggregated prediction statistics through the TTL cache.
// While live stats are disabled by the capacity level, only cached data is
// served, stale included: readers keep working at Exceeded.
type Stats struct {
	source StatsSource
	cache  StatsCache
	logger log.Logger
}

func NewStats(source StatsSource, cache StatsCache, logger log.Logger) Stats {
	return Stats{
		source: source,
		cache:  cache,
		logger: logger,
	}
}

func (s Stats) Handle(ctx *request.Context) error {
	_, flags, err := ctx.Capacity()
	if err != nil {
		return errors.WithMessage(err, "stats: get capacity state")
	}

	if flags.StatsLiveEnabled {
		if data, ok := s.cache.Get(statsCacheKey); ok {
			return s.write(ctx, data)
		}

		data, err := s.source.FetchStats(ctx.Context())
		if err == nil {
			s.cache.Set("stats", statsCacheKey, data)
			return s.write(ctx, data)
		}
		s.logger.Warn(ctx.Context(), "stats source is unavailable, falling back to stale cache",
			log.String("error", err.Error()),
		)
	}

	if data, ok := s.cache.GetStale(statsCacheKey); ok {
		return s.write(ctx, data)
	}

	return httperrors.New(
		http.StatusServiceUnavailable,
		domain.ErrCodeInternal,
		"Statistics are temporarily unavailable.",
		errors.New("stats: no cached statistics available"),
	)
}

func (s Stats) write(ctx *request.Context, data []byte) error {
	w := ctx.ResponseWriter()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(data)
	if err != nil {
		return errors.WithMessage(err, "stats: write response")
	}
	return nil
}
