package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/record-service/internal/api/http"
	"github.com/spec-kit/record-service/internal/api/http/handlers"
	"github.com/spec-kit/record-service/internal/auth"
	"github.com/spec-kit/record-service/internal/config"
	"github.com/spec-kit/record-service/internal/events"
	"github.com/spec-kit/record-service/internal/observability"
	"github.com/spec-kit/record-service/internal/persistence"
	"github.com/spec-kit/record-service/internal/repository"
	"github.com/spec-kit/record-service/internal/service"
	"github.com/spec-kit/record-service/internal/stream"
	"github.com/spec-kit/record-service/internal/worker"
)

const sseHeartbeat = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		metrics,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	clk := clock.WallClock
	dispatcher := events.NewInMemoryDispatcher()
	feedDeps := worker.ChangeFeedDependencies{Dispatcher: dispatcher, Logger: logger}
	if pool := pg.PoolHandle(); pool != nil {
		feedDeps.ChangeLog = repository.NewChangeLogRepository(pool)
	}
	if redis != nil {
		feedDeps.Publisher = redis
	}
	worker.StartChangeFeed(worker.NewChangeFeed(feedDeps))

	subscriptions := stream.NewRegistry(clk, logger, metrics)
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:      repository.NewUserRepository(clk, repository.SeedUsers()...),
		Registry:      subscriptions,
		WatchInterval: cfg.Stream.UserInterval,
		Dispatcher:    dispatcher,
		Clock:         clk,
		Logger:        logger,
	})
	productService := service.NewProductService(service.ProductDependencies{
		ProductRepo:   repository.NewProductRepository(clk, repository.SeedProducts()...),
		Registry:      subscriptions,
		WatchInterval: cfg.Stream.PriceInterval,
		Dispatcher:    dispatcher,
		Clock:         clk,
		Logger:        logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes, clk)
	sse := handlers.SSEConfig{Clock: clk, Heartbeat: sseHeartbeat, Logger: logger}

	routes := httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Users:    handlers.NewUsersHandler(userService, sse),
		Products: handlers.NewProductsHandler(productService, sse),
		Identity: auth.NewIdentityMiddleware(tokens),
		Metrics:  observability.Handler(promRegistry),
	}
	if cfg.App.IsDevelopment() {
		routes.Auth = handlers.NewAuthHandler(tokens)
	}

	app := httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, routes)

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	// Open streams never finish on their own, so end them before draining connections.
	subscriptions.CloseAll()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
