package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/txix-open/isp-kit/json"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
)

const (
	queueKeyPattern = "queue:*"
	scanPageSize    = 256
)

// Queue keeps deferred submissions under keys 'queue:{unixMillis}:{uuid}'.
// The millisecond part is zero padded to 13 digits so that ascending lexical
// key order equals FIFO order; equal timestamps fall back to uuid order.
type Queue struct {
	cli redis.UniversalClient
}

func NewQueue(cli redis.UniversalClient) Queue {
	return Queue{
		cli: cli,
	}
}

func (r Queue) Insert(ctx context.Context, item domain.QueuedSubmission, ttl time.Duration) (int64, error) {
	value, err := json.Marshal(item)
	if err != nil {
		return 0, errors.WithMessage(err, "marshal queued submission")
	}

	err = r.cli.Set(ctx, r.key(item.EnqueuedAt, item.Id), value, ttl).Err()
	if err != nil {
		return 0, errors.WithMessagef(domain.ErrStoreUnavailable, "set: %v", err)
	}

	keys, err := r.scanKeys(ctx)
	if err != nil {
		return 0, errors.WithMessage(err, "scan keys")
	}

	return int64(len(keys)), nil
}

// List returns up to maxCount oldest items without removing them.
// The second value counts keys that expired between scan and fetch.
func (r Queue) List(ctx context.Context, maxCount int) ([]domain.QueuedSubmission, int, error) {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return nil, 0, errors.WithMessage(err, "scan keys")
	}
	sort.Strings(keys)
	if len(keys) > maxCount {
		keys = keys[:maxCount]
	}
	if len(keys) == 0 {
		return nil, 0, nil
	}

	values, err := r.cli.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, 0, errors.WithMessagef(domain.ErrStoreUnavailable, "mget: %v", err)
	}

	items := make([]domain.QueuedSubmission, 0, len(values))
	expired := 0
	for i, value := range values {
		if value == nil {
			expired++
			continue
		}
		raw, ok := value.(string)
		if !ok {
			return nil, 0, errors.Errorf("unexpected value type %T for key '%s'", value, keys[i])
		}
		item := domain.QueuedSubmission{}
		err := json.Unmarshal([]byte(raw), &item)
		if err != nil {
			return nil, 0, errors.WithMessagef(err, "unmarshal queued submission '%s'", keys[i])
		}
		items = append(items, item)
	}

	return items, expired, nil
}

// Delete removes an acknowledged item. Deleting a missing key is a no-op,
// so concurrent drains may acknowledge the same item safely.
func (r Queue) Delete(ctx context.Context, enqueuedAt time.Time, id string) error {
	err := r.cli.Del(ctx, r.key(enqueuedAt, id)).Err()
	if err != nil {
		return errors.WithMessagef(domain.ErrStoreUnavailable, "del: %v", err)
	}
	return nil
}

func (r Queue) Depth(ctx context.Context) (int64, error) {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return 0, errors.WithMessage(err, "scan keys")
	}
	return int64(len(keys)), nil
}

func (r Queue) scanKeys(ctx context.Context) ([]string, error) {
	keys := make([]string, 0)
	cursor := uint64(0)
	for {
		page, next, err := r.cli.Scan(ctx, cursor, queueKeyPattern, scanPageSize).Result()
		if err != nil {
			return nil, errors.WithMessagef(domain.ErrStoreUnavailable, "scan: %v", err)
		}
		keys = append(keys, page...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

func (r Queue) key(enqueuedAt time.Time, id string) string {
	return fmt.Sprintf("queue:%013d:%s", enqueuedAt.UnixMilli(), id)
}
