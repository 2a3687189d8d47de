package handler

import (
	"context"
	"net/http"

	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
	"github.com/yojahny55/gta-6-launch-date-sub001/request"
)

type CapacityReader interface {
	State(ctx context.Context) domain.CapacityState
}

type QueueDepther interface {
	Depth(ctx context.Context) int64
}

type capacityResponse struct {
	Level         domain.CapacityLevel `json:"level"`
	RequestsToday int64                `json:"requestsToday"`
	LimitToday    int64                `json:"limitToday"`
	Features      domain.FeatureFlags  `json:"features"`
	QueueDepth    int64                `json:"queueDepth"`
}

// Capacity exposes the current budget state and feature flags. Read-only:
// polling this endpoint does not consume budget.
type Capacity struct {
	capacity CapacityReader
	queue    QueueDepther
}

func NewCapacity(capacity CapacityReader, queue QueueDepther) Capacity {
	return Capacity{
		capacity: capacity,
		queue:    queue,
	}
}

func (s Capacity) Handle(ctx *request.Context) error {
	state := s.capacity.State(ctx.Context())
	return writeJson(ctx.ResponseWriter(), http.StatusOK, capacityResponse{
		Level:         state.Level,
		RequestsToday: state.RequestsToday,
		LimitToday:    state.LimitToday,
		Features:      domain.FlagsForLevel(state.Level),
		QueueDepth:    s.queue.Depth(ctx.Context()),
	})
}
