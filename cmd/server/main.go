package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/CH4P4R/thumb-compare/internal/config"
	"github.com/CH4P4R/thumb-compare/internal/db"
	"github.com/CH4P4R/thumb-compare/internal/handler"
	"github.com/CH4P4R/thumb-compare/internal/middleware"
	"github.com/CH4P4R/thumb-compare/internal/repository"
	"github.com/CH4P4R/thumb-compare/internal/router"
	"github.com/CH4P4R/thumb-compare/internal/service"
	"github.com/CH4P4R/thumb-compare/internal/youtube"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "thumb-compare")
	log := middleware.Logger

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	version, err := db.Migrate(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}
	log.Info().Uint("version", version).Msg("schema up to date")

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	handler.InitMetrics(pool)

	ytClient := youtube.NewClient(
		cfg.YouTubeAPIKey,
		cfg.YouTubeBaseURL,
		time.Duration(cfg.ChannelPacingMs)*time.Millisecond,
	)

	projectRepo := repository.NewProjectRepo(pool)
	channelRepo := repository.NewChannelRepo(pool)
	videoRepo := repository.NewVideoRepo(pool)
	trendingRepo := repository.NewTrendingRepo(pool)
	runRepo := repository.NewRunRepo(pool)

	runner := service.NewRunner(
		ytClient,
		channelRepo,
		videoRepo,
		projectRepo,
		trendingRepo,
		runRepo,
		cache,
		cfg.ChannelFetchLimit,
		cfg.TrendingFetchLimit,
		log.With().Str("component", "runner").Logger(),
	)

	app := fiber.New(fiber.Config{
		AppName:      "thumb-compare sync",
		ServerHeader: "thumb-compare",
	})

	router.Setup(app, &router.Handlers{
		Jobs:      handler.NewJobsHandler(runner, runRepo),
		Project:   handler.NewProjectHandler(projectRepo, channelRepo, videoRepo, trendingRepo, cache),
		Thumbnail: handler.NewThumbnailHandler(),
		Health:    handler.NewHealthHandler(pool, cache.Client()),
	}, cfg.CORSOrigins, cfg.JobSecret)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("env", cfg.Environment).
		Msg("sync backend starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
