package main

import (
	"context"
	"os"
	"time"

	"erp-backend/internal/config"
	"erp-backend/internal/interfaces/router"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	setupLogger(cfg)

	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("database handle")
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("database connection failed")
	}
	log.Info().Str("driver", cfg.DatabaseDriver).Msg("database connected")

	if rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		log.Info().Msg("redis connected, quotation lock is distributed")
	} else {
		log.Warn().Msg("REDIS_URL not set, quotation lock is process-local")
	}

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
