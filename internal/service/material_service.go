package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dalmia/sensai-backend/internal/common"
	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/dalmia/sensai-backend/internal/eventlog"
	"github.com/dalmia/sensai-backend/internal/repository"
	"github.com/dalmia/sensai-backend/pkg/cache"
	"github.com/dalmia/sensai-backend/pkg/logger"
	"github.com/dalmia/sensai-backend/pkg/search"
	"gorm.io/gorm"
)

// MaterialService handles learning material business logic
type MaterialService interface {
	// Get returns the material content of a task
	Get(taskID string) (*domain.MaterialResponse, error)
	// Save overwrites the draft block content of a material task
	Save(taskID string, req *domain.SaveMaterialRequest) (*domain.MaterialResponse, error)
	// Publish marks the material published and indexes it for search
	Publish(taskID string) (*domain.MaterialResponse, error)
	// Search queries published materials
	Search(ctx context.Context, courseID, query string, limit int) (*search.Response, error)
}

type materialService struct {
	tasks  repository.TaskRepository
	cache  cache.Service
	search *search.Client
	events eventlog.Sink
}

// NewMaterialService creates a new MaterialService. The search client
// may be nil, in which case publishing skips indexing and Search fails.
func NewMaterialService(tasks repository.TaskRepository, cacheService cache.Service, searchClient *search.Client, events eventlog.Sink) MaterialService {
	if events == nil {
		events = eventlog.NopSink{}
	}
	return &materialService{tasks: tasks, cache: cacheService, search: searchClient, events: events}
}

func (s *materialService) Get(taskID string) (*domain.MaterialResponse, error) {
	ctx := context.Background()

	if data, err := s.cache.GetMaterial(ctx, taskID); err == nil {
		var cached domain.MaterialResponse
		if json.Unmarshal(data, &cached) == nil {
			return &cached, nil
		}
	}

	material, err := s.tasks.FindMaterial(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}

	resp, err := toMaterialResponse(material)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetMaterial(ctx, taskID, resp); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("failed to cache material")
	}
	return resp, nil
}

func (s *materialService) Save(taskID string, req *domain.SaveMaterialRequest) (*domain.MaterialResponse, error) {
	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrTaskNotFound
		}
		return nil, err
	}
	if task.Type != domain.TaskTypeMaterial {
		return nil, common.ErrInvalidInput
	}

	blocks, err := json.Marshal(req.Blocks)
	if err != nil {
		return nil, err
	}

	material := &domain.LearningMaterial{
		TaskID:      taskID,
		Blocks:      blocks,
		ContentText: req.ContentText,
		Status:      domain.MaterialStatusDraft,
	}
	if err := s.tasks.SaveMaterial(material); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateMaterial(context.Background(), taskID); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("failed to invalidate material cache")
	}
	return toMaterialResponse(material)
}

// Publish flips the material to published and indexes its text
// projection. Indexing failure does not roll the publish back.
func (s *materialService) Publish(taskID string) (*domain.MaterialResponse, error) {
	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrTaskNotFound
		}
		return nil, err
	}

	material, err := s.tasks.FindMaterial(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	material.Status = domain.MaterialStatusPublished
	material.PublishedAt = &now
	if err := s.tasks.SaveMaterial(material); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateMaterial(context.Background(), taskID); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("failed to invalidate material cache")
	}

	go s.events.Record(context.Background(), eventlog.SaveEvent{
		TaskID:   taskID,
		Kind:     eventlog.KindPublish,
		ByteSize: len(material.ContentText),
	})

	if s.search != nil {
		doc := map[string]interface{}{
			"title":        task.Title,
			"content":      material.ContentText,
			"course_id":    task.CourseID,
			"status":       material.Status,
			"published_at": now,
		}
		if err := s.search.IndexDocument(context.Background(), search.MaterialIndex, taskID, doc); err != nil {
			logger.GetLogger().Warn().Err(err).
				Str("task_id", taskID).
				Msg("failed to index material")
		}
	}

	return toMaterialResponse(material)
}

func (s *materialService) Search(ctx context.Context, courseID, query string, limit int) (*search.Response, error) {
	if s.search == nil {
		return nil, common.ErrSearchUnavailable
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	filter := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"status": domain.MaterialStatusPublished}},
	}
	if courseID != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"course_id": courseID},
		})
	}

	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"title^2", "content"},
					},
				},
				"filter": filter,
			},
		},
		"highlight": map[string]interface{}{
			"fields": map[string]interface{}{
				"title":   map[string]interface{}{},
				"content": map[string]interface{}{},
			},
		},
	}

	return s.search.Search(ctx, search.MaterialIndex, esQuery, 0, limit)
}

func toMaterialResponse(material *domain.LearningMaterial) (*domain.MaterialResponse, error) {
	var blocks []domain.MaterialBlock
	if len(material.Blocks) > 0 {
		if err := json.Unmarshal(material.Blocks, &blocks); err != nil {
			return nil, err
		}
	}
	return &domain.MaterialResponse{
		TaskID:      material.TaskID,
		Blocks:      blocks,
		Status:      material.Status,
		PublishedAt: material.PublishedAt,
		UpdatedAt:   material.UpdatedAt,
	}, nil
}
