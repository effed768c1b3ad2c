package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/cardlight/cardlight/internal/config"
	"github.com/cardlight/cardlight/internal/geoip"
	"github.com/cardlight/cardlight/internal/handlers"
	"github.com/cardlight/cardlight/internal/logging"
	"github.com/cardlight/cardlight/internal/middleware"
	"github.com/cardlight/cardlight/internal/ratelimit"
	"github.com/cardlight/cardlight/internal/repository"
	"github.com/cardlight/cardlight/internal/server"
	"github.com/cardlight/cardlight/internal/service"
	"github.com/cardlight/cardlight/internal/visitorlog"
)

const (
	visitorLogWindow     = 30 * time.Minute
	visitorLogMaxEntries = 10000
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	migrationsPath := flag.String("migrations", "file://migrations", "migrations source URL")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)

	connString := cfg.Database.Postgres.ConnString()

	logger.Info("running database migrations")
	m, err := migrate.New(*migrationsPath, connString)
	if err != nil {
		log.Fatalf("Failed to initialize migrations: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("database migrations completed")

	repo, err := repository.NewPostgresRepository(context.Background(), connString)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer repo.Close()

	limiter, err := ratelimit.NewRedisRateLimiter(
		cfg.Redis.URL,
		cfg.RateLimit.Limit,
		cfg.RateLimit.Window,
		!cfg.RateLimit.Enabled,
	)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer limiter.Close()

	geo := geoip.New(cfg.GeoIP.BaseURL, cfg.GeoIP.Timeout, cfg.GeoIP.Enabled)

	handler := handlers.NewHandler(
		service.NewAnalyticsService(repo),
		service.NewGiftService(repo),
		logger,
	)

	router := server.NewRouter(server.RouterConfig{
		Handler:     handler,
		VisitorLog:  visitorlog.New(logger, geo, visitorLogWindow, visitorLogMaxEntries),
		RateLimiter: limiter,
		CORS:        middleware.DefaultCORS(),
		StaticDir:   cfg.Server.StaticDir,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("cardlight backend listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("server stopped gracefully")
}
