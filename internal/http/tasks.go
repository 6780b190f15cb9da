package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"teleport-backend/internal/domain"
	"teleport-backend/internal/service"
)

type createTaskRequest struct {
	Country          string               `json:"country" binding:"required"`
	City             string               `json:"city" binding:"required"`
	StartCoordinates domain.Coordinates   `json:"start_coordinates" binding:"required"`
	Checkpoints      []domain.Coordinates `json:"checkpoints"`
	Description      string               `json:"description"`
}

type creatorResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type taskResponse struct {
	ID               int64                `json:"id"`
	Country          string               `json:"country"`
	City             string               `json:"city"`
	StartCoordinates domain.Coordinates   `json:"start_coordinates"`
	Checkpoints      []domain.Coordinates `json:"checkpoints"`
	Description      string               `json:"description"`
	Status           domain.TaskStatus    `json:"status"`
	StreamChannel    string               `json:"stream_channel,omitempty"`
	ExecutorID       *int64               `json:"executor_id,omitempty"`
	Creator          *creatorResponse     `json:"creator,omitempty"`
	CreatedAt        string               `json:"created_at"`
}

func taskToResponse(task domain.Task) taskResponse {
	resp := taskResponse{
		ID:               task.ID,
		Country:          task.Country,
		City:             task.City,
		StartCoordinates: task.Start,
		Checkpoints:      task.Checkpoints,
		Description:      task.Description,
		Status:           task.Status,
		StreamChannel:    task.StreamChannel,
		ExecutorID:       task.ExecutorID,
		CreatedAt:        task.CreatedAt.Format(time.RFC3339),
	}
	if task.Creator != nil {
		resp.Creator = &creatorResponse{
			ID:       task.Creator.ID,
			Username: task.Creator.Username,
			Email:    task.Creator.Email,
		}
	}
	return resp
}

func taskIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), service.CreateTaskInput{
		Country:     req.Country,
		City:        req.City,
		Start:       req.StartCoordinates,
		Checkpoints: req.Checkpoints,
		Description: req.Description,
	}, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task_id": task.ID,
	})
}

func (h *Handler) listTasks(c *gin.Context) {
	tasks, err := h.tasks.ListTasks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]taskResponse, len(tasks))
	for i := range tasks {
		resp[i] = taskToResponse(tasks[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getTask(c *gin.Context) {
	id, ok := taskIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, taskToResponse(*task))
}

func (h *Handler) deleteTask(c *gin.Context) {
	id, ok := taskIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// tear down any live signaling session so it is not orphaned
	h.relay.Registry().CloseTask(id)

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (h *Handler) acceptTask(c *gin.Context) {
	id, ok := taskIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.AcceptTask(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAlreadyAccepted):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Task accepted successfully",
		"stream_channel": task.StreamChannel,
	})
}

func (h *Handler) completeTask(c *gin.Context) {
	id, ok := taskIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.tasks.CompleteTask(c.Request.Context(), id, currentUserID(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotExecutor):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidState):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task completed successfully"})
}

func (h *Handler) watchTask(c *gin.Context) {
	id, ok := taskIDParam(c, "id")
	if !ok {
		return
	}

	channel, err := h.tasks.WatchTask(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrStreamNotStarted):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"stream_channel": channel})
}
