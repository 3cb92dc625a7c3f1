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

// IntegrationHandler handles stored integration requests
type IntegrationHandler struct {
	service service.IntegrationService
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(service service.IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{service: service}
}

// List handles GET /api/v1/integrations
// @Summary List the user's integrations
// @Tags integrations
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.IntegrationResponse}
// @Failure 401 {object} common.APIResponse
// @Security BearerAuth
// @Router /integrations [get]
func (h *IntegrationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	items, err := h.service.List(userID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list integrations", err)
		return
	}

	common.SuccessResponse(c, items, nil)
}

// Create handles POST /api/v1/integrations
// @Summary Persist an integration token
// @Description Stores a token the client obtained through the OAuth handshake
// @Tags integrations
// @Accept json
// @Produce json
// @Param request body domain.CreateIntegrationRequest true "Provider and token"
// @Success 201 {object} common.APIResponse{data=domain.IntegrationResponse}
// @Failure 400 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Security BearerAuth
// @Router /integrations [post]
func (h *IntegrationHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req domain.CreateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.service.Create(userID, &req)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to create integration", err)
		return
	}

	common.CreatedResponse(c, resp)
}

// Delete handles DELETE /api/v1/integrations/:provider
// @Summary Disconnect a provider
// @Tags integrations
// @Produce json
// @Param provider path string true "Provider name"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /integrations/{provider} [delete]
func (h *IntegrationHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if err := h.service.Delete(userID, c.Param("provider")); err != nil {
		if errors.Is(err, common.ErrIntegrationNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Integration not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete integration", err)
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}
