package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	v1 "taskboard/internal/delivery/http/v1"
	"taskboard/internal/repository/postgres"
	"taskboard/internal/services"
)

// NewRouter assembles the whole request path: CORS, identity gate,
// services over the postgres repositories, and the v1 routes.
func NewRouter(logger zerolog.Logger, cfg *config.Config, pool *pgxpool.Pool) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	userRepo := postgres.NewUserRepository(logger, pool)
	taskRepo := postgres.NewTaskRepository(logger, pool)

	hasher := auth.NewHasher(nil)
	tokens := auth.NewTokenService(cfg.JWT.Issuer, []byte(cfg.JWT.Secret), cfg.JWT.ExpiresIn)

	authService := services.NewAuthService(logger, userRepo, hasher, tokens)
	taskService := services.NewTaskService(logger, taskRepo)

	handler := v1.New(
		logger,
		authService,
		taskService,
		tokens,
		userRepo,
		cfg.LoginRate.Limit,
		cfg.LoginRate.Window,
	)
	v1.RegisterRoutes(router, handler)

	return router
}

// ListenAndServe runs the server until SIGINT or SIGTERM, then
// shuts down gracefully within the configured timeout.
func ListenAndServe(logger zerolog.Logger, cfg *config.Config, handler http.Handler) error {
	server := &http.Server{
		Addr:    net.JoinHostPort("", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error().
			Err(err).
			Msg("failed to listen and serve http")
		return err
	case <-quit:
	}

	logger.Info().Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		return err
	}

	logger.Info().Msg("shut down http server")
	return nil
}
