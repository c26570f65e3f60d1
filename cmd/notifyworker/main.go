// Command notifyworker runs the delivery side of the notification pipeline:
// the queue worker that persists notifications, the periodic retention
// cleanup, and the inbox HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/campusnotify/modules/inbox"
	"github.com/dmitrymomot/campusnotify/pkg/config"
	"github.com/dmitrymomot/campusnotify/pkg/httpserver"
	"github.com/dmitrymomot/campusnotify/pkg/logger"
	"github.com/dmitrymomot/campusnotify/pkg/mongo"
	"github.com/dmitrymomot/campusnotify/pkg/notifications"
	"github.com/dmitrymomot/campusnotify/pkg/pg"
	"github.com/dmitrymomot/campusnotify/pkg/queue"
	"github.com/dmitrymomot/campusnotify/pkg/redis"
	"github.com/dmitrymomot/campusnotify/pkg/requestid"
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"notifyworker"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("notifyworker exited", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadEnv(); err != nil {
		return err
	}

	var (
		acfg appConfig
		ncfg notifications.Config
		qcfg queue.Config
		rcfg redis.Config
		hcfg httpserver.Config
	)
	config.MustLoad(&acfg)
	config.MustLoad(&ncfg)
	config.MustLoad(&qcfg)
	config.MustLoad(&rcfg)
	config.MustLoad(&hcfg)

	log := logger.New(
		logger.WithEnvironment(acfg.Env, acfg.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, storeCheck, closeStore, err := openStore(ctx, ncfg.StoreDriver, log)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb, err := redis.Connect(ctx, rcfg)
	if err != nil {
		return err
	}

	// The broker owns rdb from here on and closes it with the client.
	broker := queue.NewRedisBroker(rdb,
		queue.WithRedisPrefix(qcfg.RedisPrefix),
		queue.WithRedisFailedCapacity(qcfg.FailedJobsCapacity),
		queue.WithRedisDedupWindow(qcfg.DedupWindow),
	)
	client, err := queue.NewClient(broker, queue.WithClientQueue(qcfg.QueueName))
	if err != nil {
		_ = broker.Close()
		return err
	}
	if err := client.Open(ctx); err != nil {
		_ = broker.Close()
		return err
	}
	defer func() { _ = client.Close() }()

	deliverer, err := notifications.NewDeliverer(store, notifications.WithDelivererLogger(log))
	if err != nil {
		return err
	}
	worker, err := queue.NewWorker(client,
		queue.WithQueues(qcfg.QueueName),
		queue.WithPollInterval(qcfg.PollInterval),
		queue.WithLockTimeout(qcfg.LockTimeout),
		queue.WithMaxConcurrentJobs(qcfg.MaxConcurrentJobs),
		queue.WithRetryPolicy(qcfg.RetryPolicy()),
		queue.WithShutdownTimeout(qcfg.ShutdownTimeout),
		queue.WithWorkerLogger(log),
	)
	if err != nil {
		return err
	}
	if err := worker.RegisterHandler(deliverer.Handler()); err != nil {
		return err
	}

	svc, err := notifications.NewService(store,
		notifications.WithServiceConfig(ncfg),
		notifications.WithServiceLogger(log),
	)
	if err != nil {
		return err
	}

	cleanup := queue.NewPeriodic("notifications.cleanup", queue.Every(ncfg.CleanupInterval),
		func(ctx context.Context) error {
			ctx = notifications.WithRequester(ctx, notifications.SystemRequester(svc.AdminRole()))
			_, err := svc.CleanupOld(ctx, 0)
			return err
		},
		queue.WithPeriodicLogger(log),
	)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Get("/health/live", httpserver.HealthCheckHandler(log))
	r.Get("/health/ready", httpserver.HealthCheckHandler(log,
		storeCheck,
		redis.Healthcheck(rdb),
		client.Healthcheck,
	))
	r.Mount("/notifications", inbox.Router(svc, inbox.WithLogger(log)))

	srv := httpserver.New(hcfg, httpserver.WithLogger(log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(worker.Run(gctx))
	g.Go(cleanup.Run(gctx))
	g.Go(func() error { return srv.Run(gctx, r) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openStore connects the configured backend and returns the store together
// with its readiness check and a release function.
func openStore(ctx context.Context, driver string, log *slog.Logger) (notifications.Store, func(context.Context) error, func(), error) {
	noop := func(context.Context) error { return nil }

	switch driver {
	case notifications.StoreDriverPostgres:
		var cfg pg.Config
		config.MustLoad(&cfg)

		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := pg.Migrate(ctx, pool, cfg, notifications.Migrations(), log); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		store, err := notifications.NewPostgresStore(pool)
		if err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return store, pg.Healthcheck(pool), pool.Close, nil

	case notifications.StoreDriverMongo:
		var cfg mongo.Config
		config.MustLoad(&cfg)

		db, err := mongo.ConnectDatabase(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		release := func() { _ = db.Client().Disconnect(context.Background()) }
		store, err := notifications.NewMongoStore(db)
		if err != nil {
			release()
			return nil, nil, nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			release()
			return nil, nil, nil, err
		}
		return store, mongo.Healthcheck(db.Client()), release, nil

	case notifications.StoreDriverMemory:
		log.Warn("using in-memory notification store, data is lost on restart")
		return notifications.NewMemoryStore(), noop, func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown notification store driver %q", driver)
	}
}
