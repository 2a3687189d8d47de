package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
)

// incrWithTtl atomically increments the counter, arms the window TTL on
// the first hit only and reports the remaining window in one round trip.
// The expiry never slides forward on subsequent hits, so this is a fixed
// window: up to 2x the limit can pass across a window boundary.
var incrWithTtl = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

type WindowCounter struct {
	cli   redis.UniversalClient
	clock clockwork.Clock
}

func NewWindowCounter(cli redis.UniversalClient, clock clockwork.Clock) WindowCounter {
	return WindowCounter{
		cli:   cli,
		clock: clock,
	}
}

func (r WindowCounter) IncrementAndGet(
	ctx context.Context,
	clientHash string,
	resource string,
	ttl time.Duration,
) (int64, time.Time, error) {
	key := r.key(clientHash, resource)
	resp, err := incrWithTtl.Run(ctx, r.cli, []string{key}, ttl.Milliseconds()).Slice()
	if err != nil {
		return 0, time.Time{}, errors.WithMessagef(domain.ErrStoreUnavailable, "eval incr with ttl: %v", err)
	}
	if len(resp) != 2 {
		return 0, time.Time{}, errors.Errorf("eval incr with ttl: unexpected reply length %d", len(resp))
	}

	count, ok := resp[0].(int64)
	if !ok {
		return 0, time.Time{}, errors.Errorf("eval incr with ttl: unexpected count type %T", resp[0])
	}
	pttl, ok := resp[1].(int64)
	if !ok {
		return 0, time.Time{}, errors.Errorf("eval incr with ttl: unexpected ttl type %T", resp[1])
	}

	expiresAt := r.clock.Now().Add(time.Duration(pttl) * time.Millisecond)
	return count, expiresAt, nil
}

func (r WindowCounter) key(clientHash string, resource string) string {
	return fmt.Sprintf("ratelimit:%s:%s", clientHash, resource)
}
