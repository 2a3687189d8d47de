package assembly

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/log"
	"github.com/yojahny55/gta-6-launch-date-sub001/cache"
	"github.com/yojahny55/gta-6-launch-date-sub001/conf"
	"github.com/yojahny55/gta-6-launch-date-sub001/handler"
	"github.com/yojahny55/gta-6-launch-date-sub001/identity"
	"github.com/yojahny55/gta-6-launch-date-sub001/middleware"
	"github.com/yojahny55/gta-6-launch-date-sub001/repository"
	"github.com/yojahny55/gta-6-launch-date-sub001/service"
)

const (
	resourceSubmit = "submit"
	resourceUpdate = "update"
	resourceRead   = "read"
)

type Locator struct {
	logger  log.Logger
	clock   clockwork.Clock
	httpCli *httpcli.Client
}

func NewLocator(logger log.Logger, clock clockwork.Clock, httpCli *httpcli.Client) Locator {
	return Locator{
		logger:  logger,
		clock:   clock,
		httpCli: httpCli,
	}
}

type Artifacts struct {
	Handler   http.Handler
	Processor service.Processor
}

func (l Locator) Artifacts(config conf.Remote, redisCli redis.UniversalClient) Artifacts {
	windowCounterRepo := repository.NewWindowCounter(redisCli, l.clock)
	rateLimits := config.RateLimits
	if len(rateLimits) == 0 {
		rateLimits = conf.DefaultRateLimits()
	}
	rateLimitService := service.NewRateLimit(windowCounterRepo, rateLimits, l.clock, l.logger)

	capacityRepo := repository.NewCapacity(redisCli)
	capacityService := service.NewCapacity(capacityRepo, config.Capacity.RequestsPerDay, l.clock, l.logger)

	statsBaseTtl := config.Caching.GetStatsTtl()
	statsCache := cache.New(statsBaseTtl)
	degradationService := service.NewDegradation(statsCache, statsBaseTtl, l.logger)

	queueRepo := repository.NewQueue(redisCli)
	queueService := service.NewQueue(queueRepo, config.Queue.GetTtl(), l.clock, l.logger)

	submissionRepo := repository.NewSubmission(l.httpCli, config.Submission.AcceptUrl, config.Submission.GetTimeout())
	statsRepo := repository.NewStats(l.httpCli, config.Submission.StatsUrl, config.Submission.GetTimeout())

	processor := service.NewProcessor(
		queueService,
		submissionRepo,
		capacityService,
		config.Queue.GetDrainBatchSize(),
		config.Queue.GetDrainInterval(),
		l.logger,
	)

	hasher := identity.NewHasher(config.Identity.Salt)

	submitHandler := handler.NewSubmit(submissionRepo, queueService)
	capacityHandler := handler.NewCapacity(capacityService, queueService)
	statsHandler := handler.NewStats(statsRepo, statsCache, l.logger)
	streamHandler := handler.NewCapacityStream(
		capacityService,
		queueService,
		config.Caching.GetStreamPushInterval(),
		l.clock,
		l.logger,
	)

	base := []middleware.Middleware{
		middleware.RequestId(),
		middleware.Logger(l.logger, config.Logging.RequestLogEnable),
		middleware.ErrorHandler(l.logger),
		middleware.ClientId(hasher),
	}
	writeChain := func(next middleware.Handler, resource string) middleware.Handler {
		middlewares := append(append([]middleware.Middleware{}, base...),
			middleware.RateLimit(rateLimitService, resource),
			middleware.Capacity(capacityService, degradationService),
			middleware.CapacityGuard(capacityService),
		)
		return middleware.Chain(next, middlewares...)
	}
	readChain := func(next middleware.Handler, withCapacity bool) middleware.Handler {
		middlewares := append(append([]middleware.Middleware{}, base...),
			middleware.RateLimit(rateLimitService, resourceRead),
		)
		if withCapacity {
			middlewares = append(middlewares, middleware.Capacity(capacityService, degradationService))
		}
		return middleware.Chain(next, middlewares...)
	}

	maxBodySize := config.Http.MaxRequestBodySizeInMb * 1024 * 1024 //nolint:gomnd

	entrypoint := func(next middleware.Handler, endpoint string) http.Handler {
		return middleware.Entrypoint(maxBodySize, next, l.logger, endpoint)
	}

	router := mux.NewRouter()
	router.Handle("/api/predictions",
		entrypoint(writeChain(submitHandler, resourceSubmit), resourceSubmit),
	).Methods(http.MethodPost)
	router.Handle("/api/predictions/{id}",
		entrypoint(writeChain(submitHandler, resourceUpdate), resourceUpdate),
	).Methods(http.MethodPut)
	router.Handle("/api/predictions/stats",
		entrypoint(readChain(statsHandler, true), "stats"),
	).Methods(http.MethodGet)
	router.Handle("/api/capacity",
		entrypoint(readChain(capacityHandler, false), "capacity"),
	).Methods(http.MethodGet)
	router.Handle("/api/capacity/stream",
		entrypoint(middleware.Chain(
			streamHandler,
			middleware.RequestId(),
			middleware.ErrorHandler(l.logger),
			middleware.ClientId(hasher),
		), "capacity-stream"),
	).Methods(http.MethodGet)

	return Artifacts{
		Handler:   router,
		Processor: processor,
	}
}
