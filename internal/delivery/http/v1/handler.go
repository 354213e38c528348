package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskboard/internal/auth"
	"taskboard/internal/repository"
	"taskboard/internal/services"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)

	// HandleAuthMiddleware resolves the caller from the bearer token
	// and guards every task route.
	HandleAuthMiddleware(c *gin.Context)
	// HandleLoginRateLimit rejects a client exceeding the login
	// attempt budget.
	HandleLoginRateLimit(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleSearchTasks(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
	HandleDeleteTasks(c *gin.Context)
	HandleToggleComplete(c *gin.Context)
	HandleToggleStarred(c *gin.Context)
	HandleDuplicateTask(c *gin.Context)
}

type handlerImpl struct {
	logger       zerolog.Logger
	auth         services.AuthService
	tasks        services.TaskService
	tokens       auth.TokenService
	users        repository.UserRepository
	loginLimiter *rateLimiter
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	tokens auth.TokenService,
	users repository.UserRepository,
	loginLimit int,
	loginWindow time.Duration,
) Handler {
	return &handlerImpl{
		logger:       logger,
		auth:         authService,
		tasks:        taskService,
		tokens:       tokens,
		users:        users,
		loginLimiter: newRateLimiter(loginLimit, loginWindow),
	}
}

// RegisterRoutes wires the API surface. Registration and login are
// the only unauthenticated endpoints.
func RegisterRoutes(router gin.IRouter, h Handler) {
	authRouter := router.Group("/api/auth")
	authRouter.POST("/register", h.HandleRegister)
	authRouter.POST("/login", h.HandleLoginRateLimit, h.HandleLogin)

	taskRouter := router.Group("/api/tasks")
	taskRouter.Use(h.HandleAuthMiddleware)
	taskRouter.POST("", h.HandleCreateTask)
	taskRouter.GET("", h.HandleGetTasks)
	taskRouter.GET("/search", h.HandleSearchTasks)
	taskRouter.PUT("/:id", h.HandleUpdateTask)
	taskRouter.DELETE("/:id", h.HandleDeleteTask)
	taskRouter.DELETE("", h.HandleDeleteTasks)
	taskRouter.POST("/:id/complete", h.HandleToggleComplete)
	taskRouter.POST("/:id/star", h.HandleToggleStarred)
	taskRouter.POST("/:id/duplicate", h.HandleDuplicateTask)
}
