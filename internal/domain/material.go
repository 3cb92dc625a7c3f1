package domain

import "time"

// Material status
const (
	MaterialStatusDraft     = "draft"
	MaterialStatusPublished = "published"
)

// LearningMaterial holds the block-based content of a material task.
// Blocks is the JSON-encoded block tree produced by the editor; the
// server treats it as opaque except for the plain-text projection kept
// in ContentText for search indexing.
type LearningMaterial struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID      string     `gorm:"column:task_id;size:64;not null;uniqueIndex" json:"task_id"`
	Blocks      []byte     `gorm:"column:blocks;type:json" json:"-"`
	ContentText string     `gorm:"column:content_text;type:text" json:"-"`
	Status      string     `gorm:"column:status;size:16;not null;default:draft" json:"status"`
	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (LearningMaterial) TableName() string {
	return "learning_materials"
}

// SaveMaterialRequest writes the draft block content of a material.
type SaveMaterialRequest struct {
	Blocks      []MaterialBlock `json:"blocks" binding:"required"`
	ContentText string          `json:"content_text"`
}

// MaterialBlock is one node of the editor block tree. Props and
// children stay opaque JSON.
type MaterialBlock struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type" binding:"required"`
	Props    map[string]interface{} `json:"props,omitempty"`
	Content  interface{}            `json:"content,omitempty"`
	Children []MaterialBlock        `json:"children,omitempty"`
}

type MaterialResponse struct {
	TaskID      string          `json:"task_id"`
	Blocks      []MaterialBlock `json:"blocks"`
	Status      string          `json:"status"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
