package service

import (
	"context"
	"time"

	"github.com/txix-open/isp-kit/log"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
)

// Submitter performs the actual domain write of a prediction. It must be
// idempotent on submission identity: concurrent drains may hand it the same
// item more than once.
type Submitter interface {
	AcceptSubmission(ctx context.Context, payload []byte) error
}

type SubmissionQueue interface {
	DequeueBatch(ctx context.Context, maxCount int) ([]domain.QueuedSubmission, error)
	Acknowledge(ctx context.Context, item domain.QueuedSubmission) error
}

type CapacityReader interface {
	State(ctx context.Context) domain.CapacityState
}

// Processor is a pull-based consumer over the queue. Failed items stay in
// place and are retried on the next cycle until their TTL expires.
type Processor struct {
	queue     SubmissionQueue
	submitter Submitter
	capacity  CapacityReader
	batchSize int
	interval  time.Duration
	logger    log.Logger
}

func NewProcessor(
	queue SubmissionQueue,
	submitter Submitter,
	capacity CapacityReader,
	batchSize int,
	interval time.Duration,
	logger log.Logger,
) Processor {
	return Processor{
		queue:     queue,
		submitter: submitter,
		capacity:  capacity,
		batchSize: batchSize,
		interval:  interval,
		logger:    logger,
	}
}

func (p Processor) Interval() time.Duration {
	return p.interval
}

// DrainWhenRecovered drains only while there is spare capacity. Draining at
// Critical or above would spend budget the live traffic needs.
func (p Processor) DrainWhenRecovered(ctx context.Context) (int, error) {
	state := p.capacity.State(ctx)
	if state.Level >= domain.LevelCritical {
		return 0, nil
	}
	return p.Drain(ctx)
}

func (p Processor) Drain(ctx context.Context) (int, error) {
	items, err := p.queue.DequeueBatch(ctx, p.batchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, item := range items {
		err := p.submitter.AcceptSubmission(ctx, item.Payload)
		if err != nil {
			p.logger.Error(ctx, "queued submission processing failed, will retry until ttl",
				log.String("id", item.Id),
				log.String("expiresAt", item.ExpiresAt.Format(time.RFC3339)),
				log.String("error", err.Error()),
			)
			continue
		}

		err = p.queue.Acknowledge(ctx, item)
		if err != nil {
			p.logger.Error(ctx, "acknowledge queued submission",
				log.String("id", item.Id),
				log.String("error", err.Error()),
			)
			continue
		}
		processed++
	}

	if processed > 0 {
		p.logger.Info(ctx, "queued submissions processed",
			log.Int("count", processed),
		)
	}
	return processed, nil
}

