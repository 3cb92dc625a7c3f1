package domain

import "time"

// Chat message roles
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of the quiz answering conversation. Code
// answers appear inside Content as fenced blocks; the editor falls
// back to extracting them when no stored draft exists.
type ChatMessage struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string    `gorm:"column:user_id;size:64;not null;index:idx_chat_user_question" json:"user_id"`
	QuestionID string    `gorm:"column:question_id;size:64;not null;index:idx_chat_user_question" json:"question_id"`
	Role       string    `gorm:"column:role;size:16;not null" json:"role"`
	SenderName string    `gorm:"column:sender_name;size:64" json:"sender_name,omitempty"`
	Content    string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

type PostChatMessageRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}
