package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dalmia/sensai-backend/internal/common"
	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/dalmia/sensai-backend/internal/middleware"
	"github.com/dalmia/sensai-backend/internal/service"
	"github.com/dalmia/sensai-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// MaterialHandler handles learning material requests
type MaterialHandler struct {
	service service.MaterialService
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(service service.MaterialService) *MaterialHandler {
	return &MaterialHandler{service: service}
}

// Get handles GET /api/v1/tasks/:id/material
// @Summary Read material block content
// @Description Unpublished material is returned to instructors only
// @Tags materials
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} common.APIResponse{data=domain.MaterialResponse}
// @Failure 404 {object} common.APIResponse
// @Router /tasks/{id}/material [get]
func (h *MaterialHandler) Get(c *gin.Context) {
	resp, err := h.service.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Material not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to read material", err)
		return
	}

	// Drafts stay invisible to students; the 404 matches a missing row
	// so existence is not leaked.
	if resp.Status == domain.MaterialStatusDraft && middleware.GetUserRole(c) != jwt.RoleInstructor {
		common.ErrorResponse(c, http.StatusNotFound, "Material not found", nil)
		return
	}

	common.SuccessResponse(c, resp, nil)
}

// Save handles PUT /api/v1/tasks/:id/material
// @Summary Save draft material content
// @Tags materials
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body domain.SaveMaterialRequest true "Block content"
// @Success 200 {object} common.APIResponse{data=domain.MaterialResponse}
// @Failure 400 {object} common.APIResponse
// @Security BearerAuth
// @Router /tasks/{id}/material [put]
func (h *MaterialHandler) Save(c *gin.Context) {
	if middleware.GetUserID(c) == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req domain.SaveMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.service.Save(c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTaskNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Task not found", err)
		case errors.Is(err, common.ErrInvalidInput):
			common.ErrorResponse(c, http.StatusBadRequest, "Task does not hold material content", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to save material", err)
		}
		return
	}

	common.SuccessResponse(c, resp, nil)
}

// Publish handles POST /api/v1/tasks/:id/material/publish
// @Summary Publish material content
// @Description Marks the material published and indexes it for search
// @Tags materials
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} common.APIResponse{data=domain.MaterialResponse}
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /tasks/{id}/material/publish [post]
func (h *MaterialHandler) Publish(c *gin.Context) {
	if middleware.GetUserID(c) == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	resp, err := h.service.Publish(c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrTaskNotFound) || errors.Is(err, common.ErrNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Material not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to publish material", err)
		return
	}

	common.SuccessResponse(c, resp, nil)
}

// Search handles GET /api/v1/materials/search
// @Summary Search published materials
// @Tags materials
// @Produce json
// @Param q query string true "Query text"
// @Param course_id query string false "Restrict to one course"
// @Param limit query int false "Max results"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /materials/search [get]
func (h *MaterialHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "Missing query", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	resp, err := h.service.Search(c.Request.Context(), c.Query("course_id"), query, limit)
	if err != nil {
		if errors.Is(err, common.ErrSearchUnavailable) {
			common.ErrorResponse(c, http.StatusServiceUnavailable, "Search is not available", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Search failed", err)
		return
	}

	common.SuccessResponse(c, resp, nil)
}
