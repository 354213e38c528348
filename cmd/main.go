package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"taskboard/internal/app"
	"taskboard/internal/config"
)

func main() {
	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		bootstrapLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootstrapLogger.Error().
			Err(err).
			Msg("failed to read env")
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.Env)
	logger.Info().
		Str("env", cfg.Env).
		Msg("read env")

	pool, err := app.ConnectPostgres(context.Background(), logger, cfg.DatabaseURL)
	if err != nil {
		os.Exit(1)
	}
	defer pool.Close()

	router := app.NewRouter(logger, cfg, pool)
	if err = app.ListenAndServe(logger, cfg, router); err != nil {
		os.Exit(1)
	}
}
