package repository

import (
	"github.com/dalmia/sensai-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IntegrationRepository handles integration credential data operations
type IntegrationRepository interface {
	// Save creates or overwrites the integration for (user, provider)
	Save(integration *domain.Integration) error
	// FindByUserAndProvider returns the integration, if any
	FindByUserAndProvider(userID, provider string) (*domain.Integration, error)
	// FindByUser returns all integrations of a user
	FindByUser(userID string) ([]domain.Integration, error)
	// Delete removes the integration for (user, provider)
	Delete(userID, provider string) error
}

type integrationRepository struct {
	db *gorm.DB
}

// NewIntegrationRepository creates a new IntegrationRepository
func NewIntegrationRepository(db *gorm.DB) IntegrationRepository {
	return &integrationRepository{db: db}
}

// Save creates or overwrites an integration using an upsert on
// (user_id, provider). Reconnecting replaces the stored token.
func (r *integrationRepository) Save(integration *domain.Integration) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "workspace_id", "workspace_name", "bot_id", "updated_at", "deleted_at"}),
	}).Create(integration).Error
}

func (r *integrationRepository) FindByUserAndProvider(userID, provider string) (*domain.Integration, error) {
	var integration domain.Integration
	err := r.db.Where("user_id = ? AND provider = ?", userID, provider).
		First(&integration).Error
	if err != nil {
		return nil, err
	}
	return &integration, nil
}

func (r *integrationRepository) FindByUser(userID string) ([]domain.Integration, error) {
	var integrations []domain.Integration
	err := r.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&integrations).Error
	return integrations, err
}

func (r *integrationRepository) Delete(userID, provider string) error {
	return r.db.Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&domain.Integration{}).Error
}
