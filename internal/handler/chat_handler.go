package handler

import (
	"net/http"

	"github.com/dalmia/sensai-backend/internal/common"
	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/dalmia/sensai-backend/internal/middleware"
	"github.com/dalmia/sensai-backend/internal/repository"
	"github.com/gin-gonic/gin"
)

// ChatHandler handles quiz conversation requests. The transcript is
// what draft hydration falls back to when no stored draft exists.
type ChatHandler struct {
	repo repository.ChatRepository
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(repo repository.ChatRepository) *ChatHandler {
	return &ChatHandler{repo: repo}
}

// List handles GET /api/v1/chat/:questionID
// @Summary Read the conversation for a question
// @Tags chat
// @Produce json
// @Param questionID path string true "Question ID"
// @Success 200 {object} common.APIResponse{data=[]domain.ChatMessage}
// @Failure 401 {object} common.APIResponse
// @Security BearerAuth
// @Router /chat/{questionID} [get]
func (h *ChatHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	messages, err := h.repo.FindByUserAndQuestion(userID, c.Param("questionID"))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to read conversation", err)
		return
	}

	common.SuccessResponse(c, messages, nil)
}

// Post handles POST /api/v1/chat
// @Summary Append a message to a conversation
// @Tags chat
// @Accept json
// @Produce json
// @Param request body domain.PostChatMessageRequest true "Message"
// @Success 201 {object} common.APIResponse{data=domain.ChatMessage}
// @Failure 400 {object} common.APIResponse
// @Security BearerAuth
// @Router /chat [post]
func (h *ChatHandler) Post(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req domain.PostChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	message := &domain.ChatMessage{
		UserID:     userID,
		QuestionID: req.QuestionID,
		Role:       domain.ChatRoleUser,
		SenderName: middleware.GetUserName(c),
		Content:    req.Content,
	}
	if err := h.repo.Create(message); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to store message", err)
		return
	}

	common.CreatedResponse(c, message)
}
