package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/cityfeedback/feedback-service/internal/api/http"
	"github.com/cityfeedback/feedback-service/internal/api/http/handlers"
	"github.com/cityfeedback/feedback-service/internal/auth"
	"github.com/cityfeedback/feedback-service/internal/config"
	"github.com/cityfeedback/feedback-service/internal/events"
	"github.com/cityfeedback/feedback-service/internal/observability"
	"github.com/cityfeedback/feedback-service/internal/persistence"
	"github.com/cityfeedback/feedback-service/internal/repository"
	"github.com/cityfeedback/feedback-service/internal/repository/memory"
	"github.com/cityfeedback/feedback-service/internal/service"
	"github.com/cityfeedback/feedback-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, cfg.App.Version, logger)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var store repository.Store
	if pg.Enabled() {
		store = repository.NewPostgresStore(pg.PoolHandle())
	} else {
		store = memory.NewStore()
	}

	metrics := observability.NewMetrics()
	instr := observability.NewInstrumenter(logger, metrics)
	dispatcher := events.NewInMemoryDispatcher(logger)

	var forwarder *events.RedisForwarder
	if redis.Enabled() {
		forwarder = events.NewRedisForwarder(redis.Client, cfg.Redis.EventChannel)
	}
	worker.StartNotificationWorker(worker.Subscribers{
		Dispatcher:    dispatcher,
		Notifications: service.NewNotificationService(dispatcher, logger, cfg.Notification),
		Forwarder:     forwarder,
		Logger:        logger,
	})

	userService := service.NewUserService(service.UserDependencies{
		Store:        store,
		Hasher:       auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Dispatcher:   dispatcher,
		Instrumenter: instr,
		Logger:       logger,
	})
	feedbackService := service.NewFeedbackService(service.FeedbackDependencies{
		Store:        store,
		Dispatcher:   dispatcher,
		Instrumenter: instr,
		Logger:       logger,
	})

	created, err := userService.EnsureBootstrapAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword)
	if err != nil {
		logger.Fatal("failed to create bootstrap admin", zap.Error(err))
	}
	if created {
		logger.Info("bootstrap admin created", zap.String("email", cfg.Bootstrap.AdminEmail))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	authMiddleware := auth.NewAuthMiddleware(tokens, store.Users())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(userService, tokens),
		Feedback:       handlers.NewFeedbackHandler(feedbackService),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: authMiddleware,
		LoginLimiter: httptransport.RateLimitByIP(httptransport.RateLimitConfig{
			RequestsPerMinute: cfg.Auth.LoginRequestsPerMin,
			Burst:             cfg.Auth.LoginBurst,
		}, logger),
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
