package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"taskboard/internal/models"
	"taskboard/internal/repository"
)

type UserRepository struct {
	logger zerolog.Logger
	pool   *pgxpool.Pool
}

func NewUserRepository(logger zerolog.Logger, pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		logger: logger,
		pool:   pool,
	}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	const insertUserQuery = `
INSERT INTO users (id, username, password_hash, created_at)
VALUES ($1, $2, $3, $4)
`
	_, err := r.pool.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			r.logger.Warn().
				Str("username", user.Username).
				Msg("username already taken")
			return repository.ErrUserAlreadyExists
		}

		r.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return err
	}
	r.logger.Debug().
		Str("user_id", user.ID).
		Msg("inserted user")
	return nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{ID: id}

	const selectUserByIDQuery = `
SELECT username, password_hash, created_at
FROM users WHERE id = $1
`
	err := r.pool.QueryRow(
		ctx,
		selectUserByIDQuery,
		user.ID,
	).Scan(
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}

		r.logger.Error().
			Err(err).
			Str("user_id", id).
			Msg("failed to select user by id")
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{Username: username}

	const selectUserByUsernameQuery = `
SELECT id, password_hash, created_at
FROM users WHERE username = $1
`
	err := r.pool.QueryRow(
		ctx,
		selectUserByUsernameQuery,
		user.Username,
	).Scan(
		&user.ID,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}

		r.logger.Error().
			Err(err).
			Str("username", username).
			Msg("failed to select user by username")
		return nil, err
	}
	return user, nil
}
