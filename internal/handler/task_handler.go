package handler

import (
	"errors"
	"net/http"

	"github.com/dalmia/sensai-backend/internal/common"
	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/dalmia/sensai-backend/internal/middleware"
	"github.com/dalmia/sensai-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// TaskHandler handles task requests
type TaskHandler struct {
	service service.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(service service.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create handles POST /api/v1/tasks
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body domain.CreateTaskRequest true "Task to create"
// @Success 201 {object} common.APIResponse{data=domain.TaskResponse}
// @Failure 400 {object} common.APIResponse
// @Security BearerAuth
// @Router /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	if middleware.GetUserID(c) == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req domain.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.service.Create(&req)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to create task", err)
		return
	}

	common.CreatedResponse(c, resp)
}

// Get handles GET /api/v1/tasks/:id
// @Summary Read a task with its questions
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} common.APIResponse{data=domain.TaskResponse}
// @Failure 404 {object} common.APIResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	resp, err := h.service.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrTaskNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Task not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to read task", err)
		return
	}

	common.SuccessResponse(c, resp, nil)
}

// ListByCourse handles GET /api/v1/courses/:courseID/tasks
// @Summary List the tasks of a course
// @Tags tasks
// @Produce json
// @Param courseID path string true "Course ID"
// @Success 200 {object} common.APIResponse{data=[]domain.TaskResponse}
// @Router /courses/{courseID}/tasks [get]
func (h *TaskHandler) ListByCourse(c *gin.Context) {
	items, err := h.service.ListByCourse(c.Param("courseID"))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}

	common.SuccessResponse(c, items, nil)
}

// Update handles PUT /api/v1/tasks/:id
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body domain.UpdateTaskRequest true "Fields to change"
// @Success 200 {object} common.APIResponse{data=domain.TaskResponse}
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	if middleware.GetUserID(c) == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req domain.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.service.Update(c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, common.ErrTaskNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Task not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to update task", err)
		return
	}

	common.SuccessResponse(c, resp, nil)
}
