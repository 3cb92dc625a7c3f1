package handler

import (
	"errors"
	"net/http"

	"github.com/dalmia/sensai-backend/internal/common"
	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/dalmia/sensai-backend/internal/middleware"
	"github.com/dalmia/sensai-backend/internal/service"
	"github.com/dalmia/sensai-backend/internal/ws"
	"github.com/gin-gonic/gin"
)

// DraftHandler handles code draft requests
type DraftHandler struct {
	service service.DraftService
	hub     *ws.Hub
}

// NewDraftHandler creates a new DraftHandler. hub may be nil.
func NewDraftHandler(service service.DraftService, hub *ws.Hub) *DraftHandler {
	return &DraftHandler{service: service, hub: hub}
}

// Save handles PUT /api/v1/drafts
// @Summary Save a code draft
// @Description Overwrites the in-progress code answer for a question
// @Tags drafts
// @Accept json
// @Produce json
// @Param request body domain.SaveDraftRequest true "Draft content"
// @Success 200 {object} common.APIResponse{data=domain.DraftResponse}
// @Failure 400 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Security BearerAuth
// @Router /drafts [put]
func (h *DraftHandler) Save(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req domain.SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.service.Save(userID, &req)
	if err != nil {
		if errors.Is(err, common.ErrEmptyDraft) {
			// An empty autosave is a no-op, not a client error; only a
			// deliberate manual save of nothing gets rejected.
			if req.Silent {
				common.SuccessResponse(c, nil, nil)
				return
			}
			common.ErrorResponse(c, http.StatusBadRequest, "Draft content is empty", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to save draft", err)
		return
	}

	kind := "manual_save"
	if req.Silent {
		kind = "autosave"
	}
	middleware.CountDraftSave(kind)

	// let the user's other open tabs pick up the new draft
	if h.hub != nil {
		h.hub.SendToUser(userID, &ws.Event{
			Type: ws.EventDraftSaved,
			Payload: gin.H{
				"question_id": resp.QuestionID,
				"updated_at":  resp.UpdatedAt,
			},
		})
	}

	common.SuccessResponse(c, resp, nil)
}

// Get handles GET /api/v1/drafts/:questionID
// @Summary Read a stored draft
// @Description Returns the stored draft for the authenticated user and question
// @Tags drafts
// @Produce json
// @Param questionID path string true "Question ID"
// @Success 200 {object} common.APIResponse{data=domain.DraftResponse}
// @Failure 401 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /drafts/{questionID} [get]
func (h *DraftHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	questionID := c.Param("questionID")
	resp, err := h.service.Get(userID, questionID)
	if err != nil {
		if errors.Is(err, common.ErrDraftNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Draft not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to read draft", err)
		return
	}

	common.SuccessResponse(c, resp, nil)
}

// List handles GET /api/v1/drafts
// @Summary List the user's drafts
// @Tags drafts
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.DraftResponse}
// @Failure 401 {object} common.APIResponse
// @Security BearerAuth
// @Router /drafts [get]
func (h *DraftHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	items, total, err := h.service.List(userID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list drafts", err)
		return
	}

	common.SuccessResponse(c, items, &common.Meta{Total: total})
}
