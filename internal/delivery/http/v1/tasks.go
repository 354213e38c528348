package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
	"taskboard/internal/services"
)

type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Completed   bool       `json:"completed"`
	Starred     bool       `json:"starred"`
	Archived    bool       `json:"archived"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Priority:    task.Priority,
		Category:    task.Category,
		Completed:   task.Completed,
		Starred:     task.Starred,
		Archived:    task.Archived,
		CreatedAt:   task.CreatedAt,
	}
}

func newTaskListResponse(tasks []*models.Task) []taskResponse {
	response := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newTaskResponse(task)
	}
	return response
}

type createTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=100"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    *string    `json:"priority,omitempty" binding:"omitempty,oneof=High Medium Low"`
	Category    *string    `json:"category,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Starred     *bool      `json:"starred,omitempty"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		abort(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind create task request")
		abortWithBindingError(c, err)
		return
	}

	params := services.CreateTaskParams{
		Title:    req.Title,
		DueDate:  req.DueDate,
		Priority: req.Priority,
		Category: req.Category,
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.Completed != nil {
		params.Completed = *req.Completed
	}
	if req.Starred != nil {
		params.Starred = *req.Starred
	}

	task, err := h.tasks.CreateTask(c, ownerID, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		abort(c, http.StatusUnauthorized, "authentication required")
		return
	}

	tasks, err := h.tasks.ListTasks(c, ownerID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": newTaskListResponse(tasks)})
}

func (h *handlerImpl) HandleSearchTasks(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		abort(c, http.StatusUnauthorized, "authentication required")
		return
	}

	params := services.SearchTasksParams{
		Query: c.Query("q"),
	}
	if priority := c.Query("priority"); priority != "" {
		params.Priority = &priority
	}
	if category := c.Query("category"); category != "" {
		params.Category = &category
	}
	if completedParam := c.Query("completed"); completedParam != "" {
		// Anything that is not a recognizable bool is treated as an
		// absent filter.
		if completed, err := strconv.ParseBool(completedParam); err == nil {
			params.Completed = &completed
		}
	}
	// Non-numeric page and limit fall back to the defaults.
	params.Page, _ = strconv.Atoi(c.Query("page"))
	params.Limit, _ = strconv.Atoi(c.Query("limit"))

	page, err := h.tasks.SearchTasks(c, ownerID, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to search tasks")
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": newTaskListResponse(page.Tasks),
		"pagination": gin.H{
			"page":  page.Page,
			"limit": page.Limit,
			"total": page.Total,
			"pages": page.Pages,
		},
	})
}

type updateTaskRequest struct {
	Title       *string    `json:"title,omitempty" binding:"omitempty,max=100"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    *string    `json:"priority,omitempty" binding:"omitempty,oneof=High Medium Low"`
	Category    *string    `json:"category,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Starred     *bool      `json:"starred,omitempty"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		abort(c, http.StatusUnauthorized, "authentication required")
		return
	}

	taskID := c.Param("id")

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind update task request")
		abortWithBindingError(c, err)
		return
	}

	task, err := h.tasks.UpdateTask(c, ownerID, taskID, services.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Category:    req.Category,
		Completed:   req.Completed,
		Starred:     req.Starred,
	})
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		abort(c, http.StatusUnauthorized, "authentication required")
		return
	}

	taskID := c.Param("id")

	err := h.tasks.DeleteTask(c, ownerID, taskID)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		abortWithDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type deleteTasksRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

func (h *handlerImpl) HandleDeleteTasks(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		abort(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req deleteTasksRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind bulk delete request")
		abort(c, http.StatusBadRequest, "invalid task ids")
		return
	}

	err = h.tasks.DeleteTasks(c, ownerID, req.IDs)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to delete tasks")
		abortWithDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleToggleComplete(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		abort(c, http.StatusUnauthorized, "authentication required")
		return
	}

	taskID := c.Param("id")

	task, err := h.tasks.ToggleComplete(c, ownerID, taskID)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to toggle task completion")
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleToggleStarred(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		abort(c, http.StatusUnauthorized, "authentication required")
		return
	}

	taskID := c.Param("id")

	task, err := h.tasks.ToggleStarred(c, ownerID, taskID)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to toggle task star")
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDuplicateTask(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		abort(c, http.StatusUnauthorized, "authentication required")
		return
	}

	taskID := c.Param("id")

	task, err := h.tasks.DuplicateTask(c, ownerID, taskID)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to duplicate task")
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}
