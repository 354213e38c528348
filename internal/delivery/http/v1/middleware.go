package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskboard/internal/repository"
)

const (
	userIDCtxKey   = "user_id"
	usernameCtxKey = "username"
)

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		abort(c, http.StatusUnauthorized, "authentication required")
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix {
		h.logger.Warn().Msg("malformed authorization header")
		abort(c, http.StatusUnauthorized, "authentication required")
		return
	}

	userID, err := h.tokens.Verify(parts[1])
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("token verification failed")
		abort(c, http.StatusUnauthorized, "invalid authentication token")
		return
	}

	user, err := h.users.GetUserByID(c, userID)
	if err != nil {
		// A token for a deleted user is an invalid token,
		// not a server error.
		if errors.Is(err, repository.ErrUserNotFound) {
			h.logger.Warn().
				Str("user_id", userID).
				Msg("token refers to unknown user")
			abort(c, http.StatusUnauthorized, "invalid authentication token")
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to resolve caller")
		abort(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	c.Set(userIDCtxKey, user.ID)
	c.Set(usernameCtxKey, user.Username)
	c.Next()
}

func (h *handlerImpl) HandleLoginRateLimit(c *gin.Context) {
	if !h.loginLimiter.allow(c.ClientIP()) {
		h.logger.Warn().
			Str("client_ip", c.ClientIP()).
			Msg("login rate limit exceeded")
		abort(c, http.StatusTooManyRequests, "too many login attempts, please try again later")
		return
	}
	c.Next()
}

func callerID(c *gin.Context) (string, bool) {
	value, exists := c.Get(userIDCtxKey)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}
