package assembly

import (
	"context"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/yojahny55/gta-6-launch-date-sub001/service"
)

func TestSwapRuntimeClosesPreviousRedis(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	a := &Assembly{}
	first := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	second := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})

	processor := &service.Processor{}
	a.swapRuntime(processor, first)
	require.Equal(processor, a.processor)
	require.Equal(first, a.redisCli)

	a.swapRuntime(&service.Processor{}, second)
	require.Equal(second, a.redisCli)
	require.ErrorIs(first.Ping(context.Background()).Err(), redis.ErrClosed)

	require.NoError(a.closeRedisCli())
	require.ErrorIs(second.Ping(context.Background()).Err(), redis.ErrClosed)

	// closing without a client is a no-op
	require.NoError(a.closeRedisCli())
}

func TestSwapRuntimeConcurrentWithClose(t *testing.T) {
	t.Parallel()

	a := &Assembly{}
	wg := sync.WaitGroup{}
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			a.swapRuntime(&service.Processor{}, redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))
		}()
		go func() {
			defer wg.Done()
			_ = a.closeRedisCli()
		}()
	}
	wg.Wait()
	_ = a.closeRedisCli()
}
