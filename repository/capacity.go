package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
)

const dayFormat = "2006-01-02"

// incrDaily arms the midnight expiry together with the first increment, so
// a failure between the two calls can never leave the day counter without
// a TTL.
var incrDaily = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
    redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return count
`)

type Capacity struct {
	cli redis.UniversalClient
}

func NewCapacity(cli redis.UniversalClient) Capacity {
	return Capacity{
		cli: cli,
	}
}

func (r Capacity) Increment(ctx context.Context, today time.Time) (int64, error) {
	ttlSec := int64(untilNextUtcMidnight(today).Seconds())
	value, err := incrDaily.Run(ctx, r.cli, []string{r.key(today)}, ttlSec).Int64()
	if err != nil {
		return 0, errors.WithMessagef(domain.ErrStoreUnavailable, "eval incr daily: %v", err)
	}
	return value, nil
}

func (r Capacity) Get(ctx context.Context, today time.Time) (int64, error) {
	value, err := r.cli.Get(ctx, r.key(today)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, nil
	case err != nil:
		return 0, errors.WithMessagef(domain.ErrStoreUnavailable, "get: %v", err)
	default:
		return value, nil
	}
}

func (r Capacity) key(today time.Time) string {
	return fmt.Sprintf("capacity:%s", today.UTC().Format(dayFormat))
}

func untilNextUtcMidnight(now time.Time) time.Duration {
	now = now.UTC()
	y, m, d := now.Date()
	midnight := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
	return midnight.Sub(now)
}
