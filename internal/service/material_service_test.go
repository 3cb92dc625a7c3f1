package service

import (
	"encoding/json"
	"testing"

	"github.com/dalmia/sensai-backend/internal/common"
	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/dalmia/sensai-backend/internal/eventlog"
	"github.com/dalmia/sensai-backend/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mock TaskRepository ---

type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Create(task *domain.Task) error {
	return m.Called(task).Error(0)
}

func (m *mockTaskRepo) FindByID(id string) (*domain.Task, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *mockTaskRepo) FindByCourse(courseID string) ([]domain.Task, error) {
	args := m.Called(courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *mockTaskRepo) Update(task *domain.Task) error {
	return m.Called(task).Error(0)
}

func (m *mockTaskRepo) ReplaceQuestions(taskID string, questions []domain.Question) error {
	return m.Called(taskID, questions).Error(0)
}

func (m *mockTaskRepo) FindMaterial(taskID string) (*domain.LearningMaterial, error) {
	args := m.Called(taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LearningMaterial), args.Error(1)
}

func (m *mockTaskRepo) SaveMaterial(material *domain.LearningMaterial) error {
	return m.Called(material).Error(0)
}

// --- Tests ---

func TestMaterialSave_RejectsNonMaterialTask(t *testing.T) {
	repo := new(mockTaskRepo)
	repo.On("FindByID", "task-1").Return(&domain.Task{ID: "task-1", Type: domain.TaskTypeQuiz}, nil)

	svc := NewMaterialService(repo, cache.NewService(nil), nil, nil)
	_, err := svc.Save("task-1", &domain.SaveMaterialRequest{
		Blocks: []domain.MaterialBlock{{ID: "b1", Type: "paragraph", Content: "x"}},
	})

	assert.ErrorIs(t, err, common.ErrInvalidInput)
	repo.AssertNotCalled(t, "SaveMaterial", mock.Anything)
}

func TestMaterialPublish_RecordsPublishEvent(t *testing.T) {
	blocks, _ := json.Marshal([]domain.MaterialBlock{{ID: "b1", Type: "paragraph", Content: "Loops."}})
	repo := new(mockTaskRepo)
	repo.On("FindByID", "task-1").Return(&domain.Task{ID: "task-1", CourseID: "course-1", Type: domain.TaskTypeMaterial}, nil)
	repo.On("FindMaterial", "task-1").Return(&domain.LearningMaterial{
		TaskID:      "task-1",
		Blocks:      blocks,
		ContentText: "Loops.",
		Status:      domain.MaterialStatusDraft,
	}, nil)
	repo.On("SaveMaterial", mock.Anything).Return(nil)
	sink := newRecordingSink()

	svc := NewMaterialService(repo, cache.NewService(nil), nil, sink)
	resp, err := svc.Publish("task-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.MaterialStatusPublished, resp.Status)
	assert.NotNil(t, resp.PublishedAt)

	event := sink.wait(t)
	assert.Equal(t, eventlog.KindPublish, event.Kind)
	assert.Equal(t, "task-1", event.TaskID)
}
