package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
)

type QueueRepo interface {
	Insert(ctx context.Context, item domain.QueuedSubmission, ttl time.Duration) (int64, error)
	List(ctx context.Context, maxCount int) ([]domain.QueuedSubmission, int, error)
	Delete(ctx context.Context, enqueuedAt time.Time, id string) error
	Depth(ctx context.Context) (int64, error)
}

// Queue defers submissions while the service runs out of daily budget.
// Items live at most their TTL; an item not processed in time is lost,
// that boundary is accepted and logged.
type Queue struct {
	repo   QueueRepo
	ttl    time.Duration
	clock  clockwork.Clock
	logger log.Logger
}

func NewQueue(repo QueueRepo, ttl time.Duration, clock clockwork.Clock, logger log.Logger) Queue {
	return Queue{
		repo:   repo,
		ttl:    ttl,
		clock:  clock,
		logger: logger,
	}
}

func (s Queue) Enqueue(ctx context.Context, payload []byte) (*domain.EnqueueResult, error) {
	now := s.clock.Now().UTC()
	item := domain.QueuedSubmission{
		Id:         uuid.New().String(),
		EnqueuedAt: now,
		ExpiresAt:  now.Add(s.ttl),
		Payload:    payload,
	}

	position, err := s.repo.Insert(ctx, item, s.ttl)
	if err != nil {
		return nil, errors.WithMessage(err, "insert queued submission")
	}

	return &domain.EnqueueResult{
		Id:       item.Id,
		Position: position,
	}, nil
}

// DequeueBatch reads without removing, so delivery to the processor is
// at-least-once. Acknowledge removes items after confirmed processing.
func (s Queue) DequeueBatch(ctx context.Context, maxCount int) ([]domain.QueuedSubmission, error) {
	items, expired, err := s.repo.List(ctx, maxCount)
	if err != nil {
		return nil, errors.WithMessage(err, "list queued submissions")
	}
	if expired > 0 {
		s.logger.Error(ctx, "queued submissions expired before processing",
			log.Int("count", expired),
		)
	}
	return items, nil
}

func (s Queue) Acknowledge(ctx context.Context, item domain.QueuedSubmission) error {
	err := s.repo.Delete(ctx, item.EnqueuedAt, item.Id)
	if err != nil {
		return errors.WithMessage(err, "delete queued submission")
	}
	return nil
}

func (s Queue) Depth(ctx context.Context) int64 {
	depth, err := s.repo.Depth(ctx)
	if err != nil {
		s.logger.Warn(ctx, "queue depth is unknown, store is unavailable",
			log.String("error", err.Error()),
		)
		return -1
	}
	return depth
}
