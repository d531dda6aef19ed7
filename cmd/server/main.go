package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/news-interactions-api/internal/activity"
	"github.com/news-interactions-api/internal/api"
	"github.com/news-interactions-api/internal/auth"
	"github.com/news-interactions-api/internal/config"
	"github.com/news-interactions-api/internal/database"
	"github.com/news-interactions-api/internal/moderation"
	"github.com/news-interactions-api/internal/repository"
	"github.com/news-interactions-api/internal/service"
	"github.com/news-interactions-api/pkg/logger"
)

func main() {
	migrateDown := flag.Bool("migrate-down", false, "roll back all migrations and exit")
	flag.Parse()

	// A missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting News Interactions API server...")

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if *migrateDown {
		if err := db.MigrateDown(cfg.Server.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to roll back migrations")
		}
		log.Info().Msg("Migrations rolled back")
		return
	}

	// Run migrations
	if err := db.RunMigrations(cfg.Server.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Moderation word list
	words, err := moderation.LoadWordList(cfg.Moderation.WordlistPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load moderation word list")
	}
	filter, err := moderation.NewFilter(words, cfg.Moderation.ReviewThreshold)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build moderation filter")
	}
	log.Info().
		Int("phrases", len(words.Phrases)).
		Int("words", len(words.Words)).
		Msg("Moderation filter loaded")

	// Activity recorder with optional Redis fan-out
	opts := []activity.Option{
		activity.WithBufferSize(cfg.Activity.BufferSize),
		activity.WithWorkers(cfg.Activity.Workers),
		activity.WithWriteTimeout(cfg.Activity.WriteTimeout),
	}
	if cfg.Redis.Enabled() {
		publisher, err := activity.NewRedisPublisher(context.Background(), cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, activity will not be published")
		} else {
			defer publisher.Close()
			opts = append(opts, activity.WithPublisher(publisher))
			log.Info().Str("addr", cfg.Redis.Addr).Str("channel", cfg.Redis.Channel).Msg("Publishing activity to Redis")
		}
	}
	recorder := activity.NewRecorder(repos.Activity, log, opts...)
	if cfg.Activity.Async {
		recorder.Start()
	}

	// Initialize services
	services := service.NewServices(repos, recorder, filter, cfg, log)

	// Initialize router
	resolver := auth.NewJWTResolver(cfg.Auth, repos.User)
	router := api.NewRouter(services, resolver, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Drain queued activity after in-flight requests finish
	recorder.Stop()

	log.Info().Msg("Server exited gracefully")
}
