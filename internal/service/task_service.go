package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dalmia/sensai-backend/internal/common"
	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/dalmia/sensai-backend/internal/repository"
	"github.com/dalmia/sensai-backend/pkg/cache"
	"github.com/dalmia/sensai-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskService handles task business logic
type TaskService interface {
	// Create creates a task shell
	Create(req *domain.CreateTaskRequest) (*domain.TaskResponse, error)
	// Get returns a task with its questions
	Get(id string) (*domain.TaskResponse, error)
	// ListByCourse returns the tasks of a course
	ListByCourse(courseID string) ([]domain.TaskResponse, error)
	// Update applies field and question changes
	Update(id string, req *domain.UpdateTaskRequest) (*domain.TaskResponse, error)
}

type taskService struct {
	repo  repository.TaskRepository
	cache cache.Service
}

// NewTaskService creates a new TaskService
func NewTaskService(repo repository.TaskRepository, cacheService cache.Service) TaskService {
	return &taskService{repo: repo, cache: cacheService}
}

func (s *taskService) Create(req *domain.CreateTaskRequest) (*domain.TaskResponse, error) {
	task := &domain.Task{
		ID:       uuid.NewString(),
		CourseID: req.CourseID,
		Title:    req.Title,
		Type:     req.Type,
		Status:   domain.MaterialStatusDraft,
	}
	if err := s.repo.Create(task); err != nil {
		return nil, err
	}
	return toTaskResponse(task), nil
}

// Get returns a task, serving from cache when possible
func (s *taskService) Get(id string) (*domain.TaskResponse, error) {
	ctx := context.Background()

	if data, err := s.cache.GetTask(ctx, id); err == nil {
		var cached domain.TaskResponse
		if json.Unmarshal(data, &cached) == nil {
			return &cached, nil
		}
	}

	task, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrTaskNotFound
		}
		return nil, err
	}

	resp := toTaskResponse(task)
	if err := s.cache.SetTask(ctx, id, resp); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("failed to cache task")
	}
	return resp, nil
}

func (s *taskService) ListByCourse(courseID string) ([]domain.TaskResponse, error) {
	tasks, err := s.repo.FindByCourse(courseID)
	if err != nil {
		return nil, err
	}
	items := make([]domain.TaskResponse, len(tasks))
	for i := range tasks {
		items[i] = *toTaskResponse(&tasks[i])
	}
	return items, nil
}

func (s *taskService) Update(id string, req *domain.UpdateTaskRequest) (*domain.TaskResponse, error) {
	task, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrTaskNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.OrderNo != nil {
		task.OrderNo = *req.OrderNo
	}

	if req.Questions != nil {
		questions := make([]domain.Question, len(req.Questions))
		for i, q := range req.Questions {
			qid := q.ID
			if qid == "" {
				qid = uuid.NewString()
			}
			var languages []byte
			if len(q.Languages) > 0 {
				languages, err = json.Marshal(q.Languages)
				if err != nil {
					return nil, err
				}
			}
			questions[i] = domain.Question{
				ID:        qid,
				TaskID:    id,
				Type:      q.Type,
				Prompt:    q.Prompt,
				Languages: languages,
				OrderNo:   q.OrderNo,
			}
		}
		if err := s.repo.ReplaceQuestions(id, questions); err != nil {
			return nil, err
		}
	}

	task.Questions = nil
	if err := s.repo.Update(task); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateTask(context.Background(), id); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("failed to invalidate task cache")
	}

	return s.Get(id)
}

func toTaskResponse(task *domain.Task) *domain.TaskResponse {
	resp := &domain.TaskResponse{
		ID:        task.ID,
		CourseID:  task.CourseID,
		Title:     task.Title,
		Type:      task.Type,
		Status:    task.Status,
		OrderNo:   task.OrderNo,
		UpdatedAt: task.UpdatedAt,
	}
	for i := range task.Questions {
		q := &task.Questions[i]
		var languages []string
		if len(q.Languages) > 0 {
			if err := json.Unmarshal(q.Languages, &languages); err != nil {
				logger.GetLogger().Warn().Err(err).
					Str("question_id", q.ID).
					Msg("undecodable question languages")
			}
		}
		resp.Questions = append(resp.Questions, domain.QuestionResponse{
			ID:        q.ID,
			Type:      q.Type,
			Prompt:    q.Prompt,
			Languages: languages,
			OrderNo:   q.OrderNo,
		})
	}
	return resp
}
