package domain

import (
	"time"
)

// CodeDraft is the stored in-progress code answer for one user and one
// question. Identity is (UserID, QuestionID); every save overwrites the
// previous record.
type CodeDraft struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string     `gorm:"column:user_id;size:64;not null;uniqueIndex:idx_user_question" json:"user_id"`
	QuestionID string     `gorm:"column:question_id;size:64;not null;uniqueIndex:idx_user_question" json:"question_id"`
	Code       []byte     `gorm:"column:code;type:json;not null" json:"-"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	DeletedAt  *time.Time `gorm:"column:deleted_at;index" json:"-"`
}

func (CodeDraft) TableName() string {
	return "code_drafts"
}

// LanguageCode is one language entry inside a draft payload.
type LanguageCode struct {
	Language string `json:"language" binding:"required"`
	Value    string `json:"value"`
}

// SaveDraftRequest is the body of a draft write. Silent marks
// background autosaves so the server can skip audit noise.
type SaveDraftRequest struct {
	QuestionID string         `json:"question_id" binding:"required"`
	Code       []LanguageCode `json:"code" binding:"required"`
	Silent     bool           `json:"silent"`
}

// DraftResponse is the payload returned by draft reads and writes.
type DraftResponse struct {
	UserID     string         `json:"user_id"`
	QuestionID string         `json:"question_id"`
	Code       []LanguageCode `json:"code"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
