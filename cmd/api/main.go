package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nmorozova/platefeed/backend/config"
	"github.com/nmorozova/platefeed/backend/internal/database"
	"github.com/nmorozova/platefeed/backend/internal/server"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.RunMigrations(db, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	s3Config, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		// Image uploads degrade to pass-through; everything else works.
		log.Warn().Err(err).Msg("s3 unavailable, image uploads disabled")
		s3Config = nil
	}

	srv := server.NewServer(db, redisClient, s3Config, cfg)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}
