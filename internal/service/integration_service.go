package service

import (
	"errors"

	"github.com/dalmia/sensai-backend/internal/common"
	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/dalmia/sensai-backend/internal/repository"
	"gorm.io/gorm"
)

// IntegrationService handles stored integration credentials
type IntegrationService interface {
	// List returns all integrations of a user
	List(userID string) ([]domain.IntegrationResponse, error)
	// Create persists a token obtained client side (popup flow)
	Create(userID string, req *domain.CreateIntegrationRequest) (*domain.IntegrationResponse, error)
	// Delete disconnects a provider
	Delete(userID, provider string) error
}

type integrationService struct {
	repo repository.IntegrationRepository
}

// NewIntegrationService creates a new IntegrationService
func NewIntegrationService(repo repository.IntegrationRepository) IntegrationService {
	return &integrationService{repo: repo}
}

func (s *integrationService) List(userID string) ([]domain.IntegrationResponse, error) {
	integrations, err := s.repo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	items := make([]domain.IntegrationResponse, len(integrations))
	for i := range integrations {
		items[i] = *toIntegrationResponse(&integrations[i])
	}
	return items, nil
}

func (s *integrationService) Create(userID string, req *domain.CreateIntegrationRequest) (*domain.IntegrationResponse, error) {
	integration := &domain.Integration{
		UserID:      userID,
		Provider:    req.Provider,
		AccessToken: req.AccessToken,
	}
	if err := s.repo.Save(integration); err != nil {
		return nil, err
	}
	return toIntegrationResponse(integration), nil
}

func (s *integrationService) Delete(userID, provider string) error {
	if _, err := s.repo.FindByUserAndProvider(userID, provider); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrIntegrationNotFound
		}
		return err
	}
	return s.repo.Delete(userID, provider)
}

func toIntegrationResponse(integration *domain.Integration) *domain.IntegrationResponse {
	return &domain.IntegrationResponse{
		ID:            integration.ID,
		Provider:      integration.Provider,
		WorkspaceID:   integration.WorkspaceID,
		WorkspaceName: integration.WorkspaceName,
		Connected:     integration.AccessToken != "",
		CreatedAt:     integration.CreatedAt,
	}
}
