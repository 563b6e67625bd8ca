package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sharovik/internal/api"
	"sharovik/internal/config"
	"sharovik/internal/database"
	"sharovik/internal/domain"
	"sharovik/internal/events"
	"sharovik/internal/export"
	"sharovik/internal/google"
	"sharovik/internal/logging"
	"sharovik/internal/metrics"
	"sharovik/internal/notify"
	"sharovik/internal/repository"
	"sharovik/internal/service"
	"sharovik/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	eventBus := events.NewEventBus()
	itemCache := initItemCache(cfg, redisClient, &logger)
	syncWorker := initSyncWorker(cfg, db, redisClient, &logger)

	// A typed nil in the interface would defeat the engine's nil check.
	var sheetsSync domain.SyncWorker
	if syncWorker != nil {
		sheetsSync = syncWorker
	}

	users := service.NewUserService(db, &logger)
	// The engine reads items straight from the store so the availability
	// check never sees a stale cached flag.
	bookings := service.NewBookingService(db, db, users, eventBus, sheetsSync, &logger)
	items := service.NewItemService(db, users, bookings, db, itemCache, &logger)
	comments := service.NewCommentService(db, items, users, bookings, eventBus, &logger)
	requests := service.NewRequestService(db, db, users, &logger)

	initTelegram(cfg, eventBus, &logger)

	var exports api.ExportAPI
	if cfg.Exports.Path != "" {
		exports = export.NewExcelService(cfg.Exports.Path, &logger)
	}

	httpServer := api.NewHTTPServer(cfg.API, api.Services{
		Bookings: bookings,
		Items:    items,
		Users:    users,
		Comments: comments,
		Requests: requests,
		Exports:  exports,
	}, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if syncWorker != nil {
		go syncWorker.Start(ctx)
	}

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backup.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	return serveHTTP(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if !cfg.Redis.Enabled || cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initItemCache layers redis over the in-memory cache; without redis the
// memory cache serves alone.
func initItemCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.ItemCache {
	ttl := time.Duration(cfg.Cache.ItemTTLSeconds) * time.Second
	memory := repository.NewMemoryItemCache(ttl)
	if redisClient == nil {
		return memory
	}

	primary := repository.NewRedisItemCache(redisClient, ttl)
	return repository.NewFailoverItemCache(primary, memory, logger)
}

func initSyncWorker(cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) *worker.SyncWorker {
	if !cfg.Google.Enabled {
		return nil
	}

	sheets, err := google.NewSheetsService(cfg.Google.GoogleCredentialsFile, cfg.Google.BookingSpreadSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets sync")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return worker.NewSyncWorker(db, sheets, redisClient, worker.RetryPolicy{}, logger)
}

func initTelegram(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if !cfg.Telegram.Enabled {
		return
	}

	bot, err := notify.NewBotAPI(cfg.Telegram)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}

	notifier := notify.NewTelegramNotifier(bot, cfg.Telegram.ChatID, logger)
	notifier.SubscribeAll(bus)
	logger.Info().Msg("telegram notifications enabled")
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func serveHTTP(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
