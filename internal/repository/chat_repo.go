package repository

import (
	"github.com/dalmia/sensai-backend/internal/domain"
	"gorm.io/gorm"
)

// ChatRepository handles quiz conversation data operations
type ChatRepository interface {
	// Create appends a message to the conversation
	Create(message *domain.ChatMessage) error
	// FindByUserAndQuestion returns the conversation in chronological order
	FindByUserAndQuestion(userID, questionID string) ([]domain.ChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(message *domain.ChatMessage) error {
	return r.db.Create(message).Error
}

func (r *chatRepository) FindByUserAndQuestion(userID, questionID string) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	err := r.db.Where("user_id = ? AND question_id = ?", userID, questionID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}
