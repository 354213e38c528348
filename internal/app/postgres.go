package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"taskboard/internal/repository/postgres"
)

// ConnectPostgres opens the connection pool, pings it and applies
// the schema.
func ConnectPostgres(ctx context.Context, logger zerolog.Logger, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to create postgres pool")
		return nil, err
	}

	if err = pool.Ping(ctx); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to ping postgres")
		pool.Close()
		return nil, err
	}

	if err = postgres.Migrate(ctx, pool); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to apply migrations")
		pool.Close()
		return nil, err
	}

	logger.Info().Msg("connected to postgres")
	return pool, nil
}
