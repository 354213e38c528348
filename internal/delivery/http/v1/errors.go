package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"taskboard/internal/repository"
	"taskboard/internal/services"
)

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

// abortWithBindingError reports a failed request binding as a 400
// with one message per offending field.
func abortWithBindingError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}

	messages := make([]string, len(validationErrs))
	for i, fieldErr := range validationErrs {
		messages[i] = fmt.Sprintf("%s failed on the %s rule", fieldErr.Field(), fieldErr.Tag())
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"message": "validation error",
		"errors":  messages,
	})
}

// abortWithDomainError maps service and repository errors onto the
// API's status codes. Anything unrecognized collapses to a generic
// 500; the detail stays in the logs.
func abortWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleTooLong),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrNoTaskIDs):
		abort(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		abort(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		abort(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, repository.ErrTaskArchived):
		abort(c, http.StatusBadRequest, "cannot update archived task")
	case errors.Is(err, repository.ErrTaskForbidden):
		abort(c, http.StatusForbidden, "not authorized")
	case errors.Is(err, repository.ErrTaskNotFound):
		abort(c, http.StatusNotFound, "task not found")
	default:
		abort(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
