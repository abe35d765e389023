package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"reviewhub/database"
	"reviewhub/internal/cache"
	"reviewhub/internal/config"
	"reviewhub/internal/events"
	"reviewhub/internal/microservices/http-api/handler"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/service"
)

// distinct callers tracked by the vote rate limiter
const rateLimitCallers = 10000

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	db, err := database.OpenGorm(cfg, logger)
	if err != nil {
		logger.Error("database_open_failed", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	statsCache, closeCache := cache.Open(cfg, logger, true)
	defer closeCache()

	dispatcher := events.NewDispatcher(cfg.EventWorkers, cfg.EventQueueSize, logger)
	dispatcher.Subscribe(events.LogNotifier(logger), events.AllTypes...)
	dispatcher.Start()

	store := repository.NewStore(db, cfg.TxMaxAttempts, cfg.TxRetryBackoff, logger)
	opts := service.Options{StatsCache: statsCache, Publisher: dispatcher, Logger: logger}

	limiter, err := middleware.NewRateLimiter(cfg.VoteRatePerSec, cfg.VoteRateBurst, rateLimitCallers)
	if err != nil {
		logger.Error("rate_limiter_init_failed", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(db, store, opts, service.NewAuthService(cfg.JWTSecret), limiter, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("http_server_starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		logger.Info("received_shutdown_signal")
	case err := <-errChan:
		logger.Error("server_error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http_shutdown_failed", "error", err)
	}
	// in-flight requests are done, so nothing publishes anymore
	dispatcher.Close()
	logger.Info("server_stopped_gracefully")
}

func newRouter(db *gorm.DB, store *repository.Store, opts service.Options, auth service.AuthService, limiter *middleware.RateLimiter, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(corsOrigins))

	r.GET("/healthz", handler.NewHealthHandler(db).Check)

	api := r.Group("/api/v1")
	public := api.Group("", middleware.OptionalAuth(auth))
	protected := api.Group("", middleware.AuthMiddleware(auth))
	admin := api.Group("/moderation", middleware.AuthMiddleware(auth), middleware.RequireAdmin())

	handler.NewReviewHandler(service.NewReviewService(store, opts)).RegisterRoutes(public, protected)
	handler.NewVoteHandler(service.NewVoteService(store, opts)).RegisterRoutes(protected, limiter.Middleware())
	handler.NewResponseHandler(service.NewResponseService(store, opts)).RegisterRoutes(public, protected)
	handler.NewStatsHandler(service.NewStatsService(store, opts)).RegisterRoutes(public)
	handler.NewModerationHandler(service.NewModerationService(store, opts)).RegisterRoutes(admin)

	return r
}
