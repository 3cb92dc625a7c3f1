package repository

import (
	"github.com/dalmia/sensai-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskRepository handles task and learning material data operations
type TaskRepository interface {
	// Create inserts a new task
	Create(task *domain.Task) error
	// FindByID returns a task with its questions preloaded
	FindByID(id string) (*domain.Task, error)
	// FindByCourse returns all tasks of a course in display order
	FindByCourse(courseID string) ([]domain.Task, error)
	// Update persists changed task fields
	Update(task *domain.Task) error
	// ReplaceQuestions swaps a task's question set atomically
	ReplaceQuestions(taskID string, questions []domain.Question) error

	// FindMaterial returns the material content for a task
	FindMaterial(taskID string) (*domain.LearningMaterial, error)
	// SaveMaterial creates or overwrites the material content for a task
	SaveMaterial(material *domain.LearningMaterial) error
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(task *domain.Task) error {
	return r.db.Create(task).Error
}

func (r *taskRepository) FindByID(id string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_no ASC")
	}).Where("id = ?", id).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) FindByCourse(courseID string) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.Where("course_id = ?", courseID).
		Order("order_no ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) Update(task *domain.Task) error {
	return r.db.Save(task).Error
}

// ReplaceQuestions deletes the old question set and inserts the new one
// inside a transaction
func (r *taskRepository) ReplaceQuestions(taskID string, questions []domain.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&domain.Question{}).Error; err != nil {
			return err
		}
		if len(questions) == 0 {
			return nil
		}
		return tx.Create(&questions).Error
	})
}

func (r *taskRepository) FindMaterial(taskID string) (*domain.LearningMaterial, error) {
	var material domain.LearningMaterial
	err := r.db.Where("task_id = ?", taskID).First(&material).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

// SaveMaterial creates or overwrites the material content using an
// upsert on task_id
func (r *taskRepository) SaveMaterial(material *domain.LearningMaterial) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "task_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"blocks", "content_text", "status", "published_at", "updated_at"}),
	}).Create(material).Error
}
