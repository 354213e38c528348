package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required,min=3,max=20"`
	Password string `json:"password" binding:"required,min=6,max=255"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Username: user.Username,
	}
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req credentialsRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind register request")
		abortWithBindingError(c, err)
		return
	}

	user, token, err := h.auth.Register(c, req.Username, req.Password)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to register user")
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  newUserResponse(user),
		"token": token,
	})
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req credentialsRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind login request")
		abortWithBindingError(c, err)
		return
	}

	user, token, err := h.auth.Login(c, req.Username, req.Password)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to login")
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  newUserResponse(user),
		"token": token,
	})
}
