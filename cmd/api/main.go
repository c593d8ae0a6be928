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

	httptransport "github.com/portalworks/portal-auth/internal/api/http"
	"github.com/portalworks/portal-auth/internal/api/http/handlers"
	"github.com/portalworks/portal-auth/internal/auth"
	"github.com/portalworks/portal-auth/internal/config"
	"github.com/portalworks/portal-auth/internal/events"
	"github.com/portalworks/portal-auth/internal/observability"
	"github.com/portalworks/portal-auth/internal/persistence"
	"github.com/portalworks/portal-auth/internal/ratelimit"
	"github.com/portalworks/portal-auth/internal/repository"
	"github.com/portalworks/portal-auth/internal/service"
	"github.com/portalworks/portal-auth/internal/storage"
	"github.com/portalworks/portal-auth/internal/worker"
)

const janitorInterval = 5 * time.Minute

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

	pool := pg.PoolHandle()
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	userRepo := repository.NewUserRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	prefsRepo := repository.NewPreferencesRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)

	worker.StartSubscribers(
		service.NewActivityRecorder(dispatcher, activityRepo),
		service.NewNotificationService(dispatcher, logger, cfg.Notification),
	)

	attempts := ratelimit.NewLoginAttempts(redis.Client, ratelimit.LoginAttemptsConfig{
		MaxAttempts: cfg.Auth.LoginMaxAttempts,
		Window:      cfg.Auth.LoginLockout,
	})

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:          userRepo,
		SessionRepo:       sessionRepo,
		PreferencesRepo:   prefsRepo,
		PasswordResetRepo: resetRepo,
		Attempts:          attempts,
		Dispatcher:        dispatcher,
		Logger:            logger,
		Metrics:           metrics,
	})
	accountService := service.NewAccountService(service.AccountDependencies{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Metrics:     metrics,
	})

	store, err := storage.NewFileStore(cfg.Storage.Dir)
	if err != nil {
		logger.Fatal("failed to open photo store", zap.Error(err))
	}
	profileService := service.NewProfileService(service.ProfileDependencies{
		UserRepo:     userRepo,
		ActivityRepo: activityRepo,
		Store:        store,
		MaxBytes:     cfg.Storage.MaxPhotoBytes,
		Dispatcher:   dispatcher,
		Logger:       logger,
		Metrics:      metrics,
	})

	throttle := ratelimit.NewIPThrottle(cfg.HTTP.RateLimitPerSecond, cfg.HTTP.RateLimitBurst)
	janitor := worker.NewJanitor(janitorInterval, logger,
		worker.Task{Name: "expired_sessions", Run: authService.PurgeExpiredSessions},
		worker.Task{Name: "ip_buckets", Run: func(context.Context) (int64, error) {
			return int64(throttle.Sweep()), nil
		}},
	)
	go janitor.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Storage.MaxPhotoBytes) + 64<<10,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	authMiddleware := auth.NewAuthMiddleware(authService, cfg.Auth.CookieName)
	cookie := handlers.CookieConfig{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, authMiddleware, cookie),
		Accounts:       handlers.NewAccountHandler(accountService),
		Profile:        handlers.NewProfileHandler(profileService),
		AuthMiddleware: authMiddleware,
		CSRF:           authService.CSRF(),
		Throttle:       throttle,
		Metrics:        metrics.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.ShutdownWithTimeout(10 * time.Second)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
