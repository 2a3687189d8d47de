package handler

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
	"github.com/yojahny55/gta-6-launch-date-sub001/request"
)

// CapacityStream pushes the capacity state over a websocket on a fixed
// interval, for the public dashboard. The stream closes itself once the
// capacity level disables live stats.
type CapacityStream struct {
	capacity CapacityReader
	queue    QueueDepther
	interval time.Duration
	clock    clockwork.Clock
	logger   log.Logger
	upgrader websocket.Upgrader
}

func NewCapacityStream(
	capacity CapacityReader,
	queue QueueDepther,
	interval time.Duration,
	clock clockwork.Clock,
	logger log.Logger,
) *CapacityStream {
	return &CapacityStream{
		capacity: capacity,
		queue:    queue,
		interval: interval,
		clock:    clock,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (s *CapacityStream) Handle(ctx *request.Context) error {
	conn, err := s.upgrader.Upgrade(ctx.ResponseWriter(), ctx.Request(), nil)
	if err != nil {
		return errors.WithMessage(err, "capacity stream: upgrade connection")
	}
	defer func() {
		_ = conn.Close()
	}()

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		state := s.capacity.State(ctx.Context())
		flags := domain.FlagsForLevel(state.Level)
		if !flags.StatsLiveEnabled {
			message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "live updates are disabled")
			_ = conn.WriteMessage(websocket.CloseMessage, message)
			return nil
		}

		err := conn.WriteJSON(capacityResponse{
			Level:         state.Level,
			RequestsToday: state.RequestsToday,
			LimitToday:    state.LimitToday,
			Features:      flags,
			QueueDepth:    s.queue.Depth(ctx.Context()),
		})
		if err != nil {
			s.logger.Debug(ctx.Context(), "capacity stream closed",
				log.String("error", err.Error()),
			)
			return nil
		}

		select {
		case <-ctx.Context().Done():
			return nil
		case <-ticker.Chan():
		}
	}
}
