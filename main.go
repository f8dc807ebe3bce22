package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"spotifyharvester/pkg/config"
	"spotifyharvester/pkg/db"
	"spotifyharvester/pkg/service"
	"spotifyharvester/pkg/spotify"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	app := &cli.App{
		Name:  "spotify-harvester",
		Usage: "harvest Spotify playlists, tracks and audio features into a local dataset",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "playlists",
				Aliases: []string{"n"},
				Usage:   "number of playlists to fetch (overrides DEFAULT_NUM_PLAYLISTS)",
			},
			&cli.BoolFlag{
				Name:  "skip-features",
				Usage: "skip audio feature resolution",
			},
			&cli.BoolFlag{
				Name:  "skip-db",
				Usage: "skip saving to the database",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c, logger)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal("Harvest failed", zap.Error(err))
	}
}

func run(c *cli.Context, logger *zap.Logger) error {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.IsSet("playlists") {
		cfg.NumPlaylists = c.Int("playlists")
	}
	if c.Bool("skip-features") {
		cfg.SkipAudioFeatures = true
	}
	if c.Bool("skip-db") {
		cfg.SkipDatabase = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("starting harvest",
		zap.Int("playlists", cfg.NumPlaylists),
		zap.Duration("request_delay", cfg.DelayBetweenRequests),
		zap.Duration("batch_delay", cfg.DelayBetweenBatches),
		zap.Int("features_batch_size", cfg.AudioFeaturesBatchSize),
		zap.Int("workers", cfg.FetchWorkers),
		zap.Bool("skip_features", cfg.SkipAudioFeatures),
		zap.Bool("skip_db", cfg.SkipDatabase))

	var database db.Database
	if !cfg.SkipDatabase {
		database, err = db.NewDatabase(ctx, logger, cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if err := database.Close(); err != nil {
				logger.Warn("error closing database", zap.Error(err))
			}
		}()
	}

	client, err := spotify.NewClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	harvester := service.NewHarvester(client, database, cfg, logger)
	dataset, err := harvester.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("harvest completed",
		zap.Int("playlists", len(dataset.Playlists)),
		zap.Int("tracks", len(dataset.Tracks)))
	return nil
}
