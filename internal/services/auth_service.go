package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskboard/internal/auth"
	"taskboard/internal/models"
	"taskboard/internal/repository"
)

type authServiceImpl struct {
	logger zerolog.Logger
	users  repository.UserRepository
	hasher auth.Hasher
	tokens auth.TokenService
}

func NewAuthService(
	logger zerolog.Logger,
	users repository.UserRepository,
	hasher auth.Hasher,
	tokens auth.TokenService,
) AuthService {
	return &authServiceImpl{
		logger: logger,
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, username, password string) (*models.User, string, error) {
	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, "", fmt.Errorf("failed to generate user uuid: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, "", err
	}

	user := &models.User{
		ID:           userUUID.String(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	err = s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			s.logger.Warn().
				Str("username", username).
				Msg("username already taken")
			return nil, "", ErrUsernameTaken
		}

		s.logger.Error().
			Err(err).
			Msg("failed to create user")
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to issue token")
		return nil, "", err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("registered user")
	return user, token, nil
}

func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn().
				Str("username", username).
				Msg("login for unknown username")
			return nil, "", ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select user")
		return nil, "", err
	}

	match, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		// A broken digest must look exactly like a wrong password.
		s.logger.Error().
			Err(err).
			Msg("failed to verify password")
		return nil, "", ErrInvalidCredentials
	}
	if !match {
		s.logger.Warn().
			Str("user_id", user.ID).
			Msg("password mismatch")
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to issue token")
		return nil, "", err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("logged in")
	return user, token, nil
}
