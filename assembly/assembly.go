package assembly

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/txix-open/isp-kit/app"
	"github.com/txix-open/isp-kit/bootstrap"
	"github.com/txix-open/isp-kit/cluster"
	"github.com/txix-open/isp-kit/http"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/log"
	"github.com/yojahny55/gta-6-launch-date-sub001/conf"
	"github.com/yojahny55/gta-6-launch-date-sub001/service"
)

const waitForFirstConfig = 1 * time.Second

type Assembly struct {
	boot    *bootstrap.Bootstrap
	server  *http.Server
	logger  *log.Adapter
	clock   clockwork.Clock
	httpCli *httpcli.Client

	lock      sync.Mutex
	processor *service.Processor
	redisCli  redis.UniversalClient
}

func New(boot *bootstrap.Bootstrap) (*Assembly, error) {
	return &Assembly{
		boot:    boot,
		server:  http.NewServer(boot.App.Logger()),
		logger:  boot.App.Logger(),
		clock:   clockwork.NewRealClock(),
		httpCli: httpcli.New(),
	}, nil
}

func (a *Assembly) ReceiveConfig(ctx context.Context, remoteConfig []byte) error {
	var (
		newCfg  conf.Remote
		prevCfg conf.Remote
	)
	err := a.boot.RemoteConfig.Upgrade(remoteConfig, &newCfg, &prevCfg)
	if err != nil {
		a.logger.Fatal(ctx, errors.WithMessage(err, "upgrade remote config"))
	}
	err = newCfg.Validate()
	if err != nil {
		a.logger.Fatal(ctx, errors.WithMessage(err, "invalid remote config"))
	}

	a.logger.SetLevel(newCfg.Logging.LogLevel)

	newRedisCli := a.redisClient(*newCfg.Redis)

	locator := NewLocator(a.logger, a.clock, a.httpCli)
	artifacts := locator.Artifacts(newCfg, newRedisCli)

	a.server.Upgrade(artifacts.Handler)

	a.swapRuntime(&artifacts.Processor, newRedisCli)

	return nil
}

// swapRuntime installs the artifacts built from a fresh remote config and
// closes the redis client of the previous one.
func (a *Assembly) swapRuntime(processor *service.Processor, redisCli redis.UniversalClient) {
	a.lock.Lock()
	prevRedisCli := a.redisCli
	a.processor = processor
	a.redisCli = redisCli
	a.lock.Unlock()

	if prevRedisCli != nil {
		_ = prevRedisCli.Close()
	}
}

func (a *Assembly) closeRedisCli() error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.redisCli == nil {
		return nil
	}
	err := a.redisCli.Close()
	a.redisCli = nil
	return err
}

func (a *Assembly) Runners() []app.Runner {
	eventHandler := cluster.NewEventHandler().
		RemoteConfigReceiver(a)

	return []app.Runner{
		app.RunnerFunc(func(ctx context.Context) error {
			return a.server.ListenAndServe(a.boot.BindingAddress)
		}),
		app.RunnerFunc(func(ctx context.Context) error {
			return a.boot.ClusterCli.Run(ctx, eventHandler)
		}),
		app.RunnerFunc(func(ctx context.Context) error {
			a.runQueueProcessor(ctx)
			return nil
		}),
	}
}

// runQueueProcessor picks up the current processor on every cycle, so a
// remote config upgrade takes effect on the next tick without a restart.
func (a *Assembly) runQueueProcessor(ctx context.Context) {
	for {
		a.lock.Lock()
		processor := a.processor
		a.lock.Unlock()

		if processor == nil {
			select {
			case <-ctx.Done():
				return
			case <-a.clock.After(waitForFirstConfig):
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-a.clock.After(processor.Interval()):
			_, err := processor.DrainWhenRecovered(ctx)
			if err != nil {
				a.logger.Error(ctx, errors.WithMessage(err, "drain submission queue"))
			}
		}
	}
}

func (a *Assembly) Closers() []app.Closer {
	return []app.Closer{
		a.boot.ClusterCli,
		app.CloserFunc(func() error {
			return a.server.Shutdown(context.Background())
		}),
		app.CloserFunc(a.closeRedisCli),
	}
}

func (a *Assembly) redisClient(config conf.Redis) redis.UniversalClient {
	if config.Sentinel != nil {
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       config.Sentinel.MasterName,
			SentinelAddrs:    config.Sentinel.Addresses,
			SentinelUsername: config.Sentinel.Username,
			SentinelPassword: config.Sentinel.Password,
			Username:         config.Username,
			Password:         config.Password,
		})
	}
	return redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Username: config.Username,
		Password: config.Password,
	})
}
