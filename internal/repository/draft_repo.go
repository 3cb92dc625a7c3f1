package repository

import (
	"github.com/dalmia/sensai-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DraftRepository handles code draft data operations
type DraftRepository interface {
	// Save creates or overwrites the draft for (user, question)
	Save(draft *domain.CodeDraft) error
	// FindByUserAndQuestion returns the stored draft, if any
	FindByUserAndQuestion(userID, questionID string) (*domain.CodeDraft, error)
	// FindByUser returns all drafts for a user ordered by recency
	FindByUser(userID string) ([]domain.CodeDraft, error)
	// Count returns the number of drafts for a user
	Count(userID string) (int64, error)
}

type draftRepository struct {
	db *gorm.DB
}

// NewDraftRepository creates a new DraftRepository
func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

// Save creates or overwrites a draft using an upsert on (user_id, question_id)
func (r *draftRepository) Save(draft *domain.CodeDraft) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "updated_at"}),
	}).Create(draft).Error
}

// FindByUserAndQuestion returns the stored draft for a user and question
func (r *draftRepository) FindByUserAndQuestion(userID, questionID string) (*domain.CodeDraft, error) {
	var draft domain.CodeDraft
	err := r.db.Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// FindByUser returns all drafts for a user ordered by most recent first
func (r *draftRepository) FindByUser(userID string) ([]domain.CodeDraft, error) {
	var drafts []domain.CodeDraft
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&drafts).Error
	return drafts, err
}

// Count returns the number of drafts for a user
func (r *draftRepository) Count(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.CodeDraft{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
