package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"goaltracker/docs"
	"goaltracker/internal/auth"
	"goaltracker/internal/cache"
	"goaltracker/internal/config"
	"goaltracker/internal/db"
	"goaltracker/internal/handler"
	"goaltracker/internal/lifecycle"
	"goaltracker/internal/logger"
	"goaltracker/internal/mail"
	"goaltracker/internal/middleware"
	"goaltracker/internal/router"
	"goaltracker/internal/service"
)

// @title Goal Tracker API
// @version 1.0
// @description Goals, tasks and progress tracking with JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		stdlog.Fatalf("logger init: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.UsesDefaultSecret() {
		log.Warn("JWT_SECRET is not set, tokens are signed with the development placeholder")
	}

	repos, storage, err := db.Open(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("storage init", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}

	var cacheClient *cache.Client
	var cacheHealth handler.Pinger
	if cfg.RedisAddr != "" {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		cacheHealth = cacheClient
		if err := cacheClient.Ping(context.Background()); err != nil {
			log.Warn("redis unreachable, logout and password reset are degraded", zap.Error(err))
		}
	}

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	tokenStore := auth.NewTokenStore(cacheClient)
	mailer := mail.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender, log)

	// Initialize services
	planner := service.StaticPlanner{}
	reconciler := service.NewProgressReconciler(repos.Goals, repos.Tasks, log)
	authService := service.NewAuthService(repos.Users, jwtService, tokenStore, mailer, log)
	goalService := service.NewGoalService(repos.Goals, repos.Tasks, planner, log)
	taskService := service.NewTaskService(repos.Goals, repos.Tasks, reconciler, planner, cfg.Location(), log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Register routes
	router.Register(
		e,
		cfg,
		log,
		middleware.RequireAuth(jwtService, authService),
		handler.NewAuthHandler(authService),
		handler.NewGoalHandler(goalService, cfg.Location()),
		handler.NewTaskHandler(taskService, cfg.Location()),
		handler.NewHealthHandler(storage, cacheHealth),
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}

	manager := lifecycle.New(cfg.ShutdownTimeout, log)
	manager.Register("storage", storage.Close)
	manager.Register("redis", func(ctx context.Context) error { return cacheClient.Close() })
	manager.Register("http", e.Shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := ":" + cfg.ServerPort
	go func() {
		log.Info("server listening",
			zap.String("addr", addr),
			zap.String("env", cfg.Environment),
			zap.String("swagger", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"),
		)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
			cancel()
		}
	}()

	manager.Wait(ctx)

	if err := manager.Shutdown(context.Background()); err != nil {
		log.Error("shutdown finished with errors", zap.Error(err))
		return
	}
	log.Info("shutdown complete")
}
