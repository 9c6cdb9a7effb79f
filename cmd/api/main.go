package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"

	"github.com/BradenHooton/tasktrack/internal/auth"
	"github.com/BradenHooton/tasktrack/internal/background"
	"github.com/BradenHooton/tasktrack/internal/config"
	"github.com/BradenHooton/tasktrack/internal/database"
	"github.com/BradenHooton/tasktrack/internal/handlers"
	middlewareCustom "github.com/BradenHooton/tasktrack/internal/middleware"
	"github.com/BradenHooton/tasktrack/internal/repositories"
	"github.com/BradenHooton/tasktrack/internal/routes"
	"github.com/BradenHooton/tasktrack/internal/services"
	pkgauth "github.com/BradenHooton/tasktrack/pkg/auth"
	pkghttp "github.com/BradenHooton/tasktrack/pkg/http"
	pkglogger "github.com/BradenHooton/tasktrack/pkg/logger"
)

func main() {
	logger := pkglogger.New(os.Stdout, "info")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = pkglogger.New(os.Stdout, cfg.Server.LogLevel)
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("version", cfg.Server.Version))

	hasher, err := pkgauth.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Error("invalid BCRYPT_COST", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.NewConnection(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	ipConfig, err := pkghttp.NewIPConfig(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)

	// Initialize security components
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry, clock)
	// One tracker for the whole process so every request shares it
	tracker := auth.NewLockoutTracker(cfg.Auth.MaxFailedAttempts, cfg.Auth.LockoutDuration, clock)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelay: cfg.Auth.TimingBaseDelay,
		Jitter:    cfg.Auth.TimingJitter,
	})
	auditLogger := pkglogger.NewAuditLogger(logger)

	// Initialize services
	accountStore := services.NewAccountStore(userRepo, hasher, clock, services.LockoutPolicy{
		MaxAttempts: cfg.Auth.MaxFailedAttempts,
		Duration:    cfg.Auth.LockoutDuration,
	})
	authService := services.NewAuthService(accountStore, hasher, tracker, tokenManager, timingDelay, logger, auditLogger)
	taskService := services.NewTaskService(taskRepo, clock, logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.AppName, cfg.Server.Version)
	authHandler := handlers.NewAuthHandler(authService, ipConfig)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger, ipConfig))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	routes.RegisterRoutes(router, healthHandler, authHandler, taskHandler, authService.VerifyToken,
		middlewareCustom.RateLimitConfig{
			Enabled:           cfg.RateLimit.Enabled,
			RequestsPerMinute: cfg.RateLimit.PerMinute,
			IPConfig:          ipConfig,
		})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Sweep idle lockout keys in the background
	cleanupManager := background.NewCleanupManager(tracker, logger, cfg.Auth.SweepInterval, clock)
	go cleanupManager.Start(ctx)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	select {
	case err := <-serverErr:
		logger.Error("server error", slog.Any("error", err))
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	cleanupManager.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		return
	}

	logger.Info("server stopped gracefully")
}
