package domain

import "time"

// Task types
const (
	TaskTypeQuiz     = "quiz"
	TaskTypeExam     = "exam"
	TaskTypeMaterial = "learning_material"
)

// Question input types
const (
	QuestionTypeText = "text"
	QuestionTypeCode = "code"
)

// Task is a unit of course work: a quiz, an exam, or a learning
// material. Quiz and exam tasks carry questions; material tasks carry
// block content (see LearningMaterial).
type Task struct {
	ID        string     `gorm:"primaryKey;size:64" json:"id"`
	CourseID  string     `gorm:"column:course_id;size:64;not null;index" json:"course_id"`
	Title     string     `gorm:"column:title;size:255;not null" json:"title"`
	Type      string     `gorm:"column:type;size:32;not null" json:"type"`
	Status    string     `gorm:"column:status;size:16;not null;default:draft" json:"status"`
	OrderNo   int        `gorm:"column:order_no;default:0" json:"order_no"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index" json:"-"`

	Questions []Question `gorm:"foreignKey:TaskID" json:"questions,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}

// Question belongs to a quiz or exam task. Code questions list the
// languages the editor offers.
type Question struct {
	ID        string     `gorm:"primaryKey;size:64" json:"id"`
	TaskID    string     `gorm:"column:task_id;size:64;not null;index" json:"task_id"`
	Type      string     `gorm:"column:type;size:16;not null" json:"type"`
	Prompt    string     `gorm:"column:prompt;type:text;not null" json:"prompt"`
	Languages []byte     `gorm:"column:languages;type:json" json:"-"`
	OrderNo   int        `gorm:"column:order_no;default:0" json:"order_no"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index" json:"-"`
}

func (Question) TableName() string {
	return "questions"
}

// TaskResponse is the task payload handed to clients, with question
// languages decoded.
type TaskResponse struct {
	ID        string             `json:"id"`
	CourseID  string             `json:"course_id"`
	Title     string             `json:"title"`
	Type      string             `json:"type"`
	Status    string             `json:"status"`
	OrderNo   int                `json:"order_no"`
	Questions []QuestionResponse `json:"questions,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type QuestionResponse struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Prompt    string   `json:"prompt"`
	Languages []string `json:"languages,omitempty"`
	OrderNo   int      `json:"order_no"`
}

// CreateTaskRequest creates a task shell; questions and content are
// attached by later updates.
type CreateTaskRequest struct {
	CourseID string `json:"course_id" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Type     string `json:"type" binding:"required,oneof=quiz exam learning_material"`
}

type UpdateTaskRequest struct {
	Title     *string                 `json:"title"`
	Status    *string                 `json:"status"`
	OrderNo   *int                    `json:"order_no"`
	Questions []UpdateQuestionRequest `json:"questions"`
}

type UpdateQuestionRequest struct {
	ID        string   `json:"id"`
	Type      string   `json:"type" binding:"omitempty,oneof=text code"`
	Prompt    string   `json:"prompt"`
	Languages []string `json:"languages"`
	OrderNo   int      `json:"order_no"`
}
