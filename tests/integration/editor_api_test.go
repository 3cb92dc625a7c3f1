package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/dalmia/sensai-backend/internal/handler"
	"github.com/dalmia/sensai-backend/internal/repository"
	"github.com/dalmia/sensai-backend/internal/routes"
	"github.com/dalmia/sensai-backend/internal/service"
	"github.com/dalmia/sensai-backend/internal/ws"
	"github.com/dalmia/sensai-backend/pkg/cache"
	"github.com/dalmia/sensai-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// EditorAPISuite is an integration test suite for the editor API
type EditorAPISuite struct {
	suite.Suite
	db         *gorm.DB
	router     *gin.Engine
	jwtManager *jwt.Manager

	quizTaskID     string
	materialTaskID string
	questionID     string
}

func TestEditorAPISuite(t *testing.T) {
	suite.Run(t, new(EditorAPISuite))
}

func (s *EditorAPISuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	// Use SQLite for tests (no external DB dependency)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)
	s.db = db

	s.Require().NoError(db.AutoMigrate(
		&domain.Task{},
		&domain.Question{},
		&domain.LearningMaterial{},
		&domain.CodeDraft{},
		&domain.ChatMessage{},
		&domain.Integration{},
	))

	s.jwtManager = jwt.NewManager("test-secret-key-for-integration-tests", 60)
	cacheService := cache.NewMemory()

	// Setup repos, services, handlers, routes
	draftRepo := repository.NewDraftRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	integrationRepo := repository.NewIntegrationRepository(db)
	chatRepo := repository.NewChatRepository(db)

	draftSvc := service.NewDraftService(draftRepo, cacheService, nil)
	taskSvc := service.NewTaskService(taskRepo, cacheService)
	materialSvc := service.NewMaterialService(taskRepo, cacheService, nil, nil)
	integrationSvc := service.NewIntegrationService(integrationRepo)
	notionSvc := service.NewNotionService(service.NotionConfig{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		RedirectURI:  "http://localhost:8080/api/v1/integrations/notion/callback",
	}, integrationRepo, nil)

	hub := ws.NewHub(nil)

	s.router = gin.New()
	routes.Setup(s.router,
		handler.NewDraftHandler(draftSvc, hub),
		handler.NewTaskHandler(taskSvc),
		handler.NewMaterialHandler(materialSvc),
		handler.NewIntegrationHandler(integrationSvc),
		handler.NewNotionHandler(notionSvc, cacheService, []string{"http://localhost:3000"}),
		handler.NewChatHandler(chatRepo),
		handler.NewMediaHandler(nil),
		handler.NewWSHandler(hub, "http://localhost:3000"),
		s.jwtManager,
	)

	s.seedTestData()
}

func (s *EditorAPISuite) seedTestData() {
	s.quizTaskID = "task-quiz-1"
	s.materialTaskID = "task-material-1"
	s.questionID = "question-1"

	languages, _ := json.Marshal([]string{"python", "javascript"})

	s.db.Create(&domain.Task{
		ID:       s.quizTaskID,
		CourseID: "course-1",
		Title:    "Loops Quiz",
		Type:     domain.TaskTypeQuiz,
		Status:   "published",
	})
	s.db.Create(&domain.Question{
		ID:        s.questionID,
		TaskID:    s.quizTaskID,
		Type:      domain.QuestionTypeCode,
		Prompt:    "Sum the numbers from 1 to n.",
		Languages: languages,
	})
	s.db.Create(&domain.Task{
		ID:       s.materialTaskID,
		CourseID: "course-1",
		Title:    "Intro to Loops",
		Type:     domain.TaskTypeMaterial,
		Status:   "published",
	})
}

// --- Helpers ---

func (s *EditorAPISuite) authToken() string {
	token, err := s.jwtManager.GenerateAccessToken("user-1", "Tester", jwt.RoleInstructor)
	s.Require().NoError(err)
	return token
}

func (s *EditorAPISuite) studentToken() string {
	token, err := s.jwtManager.GenerateAccessToken("user-2", "Learner", jwt.RoleStudent)
	s.Require().NoError(err)
	return token
}

func (s *EditorAPISuite) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, body []byte) map[string]interface{} {
	var resp map[string]interface{}
	err := json.Unmarshal(body, &resp)
	assert.NoError(t, err)
	data, _ := resp["data"].(map[string]interface{})
	return data
}

// --- Draft Tests ---

func (s *EditorAPISuite) TestSaveDraft_Unauthorized() {
	w := s.request(http.MethodPut, "/api/v1/drafts", domain.SaveDraftRequest{
		QuestionID: s.questionID,
		Code:       []domain.LanguageCode{{Language: "python", Value: "x = 1"}},
	}, "")

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *EditorAPISuite) TestSaveDraft_RoundTrip() {
	token := s.authToken()

	w := s.request(http.MethodPut, "/api/v1/drafts", domain.SaveDraftRequest{
		QuestionID: s.questionID,
		Code: []domain.LanguageCode{
			{Language: "python", Value: "total = sum(range(n + 1))"},
			{Language: "javascript", Value: ""},
		},
	}, token)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, "/api/v1/drafts/"+s.questionID, nil, token)
	s.Require().Equal(http.StatusOK, w.Code)

	data := decodeData(s.T(), w.Body.Bytes())
	assert.Equal(s.T(), s.questionID, data["question_id"])

	code := data["code"].([]interface{})
	s.Require().Len(code, 2)
	first := code[0].(map[string]interface{})
	assert.Equal(s.T(), "python", first["language"])
	assert.Equal(s.T(), "total = sum(range(n + 1))", first["value"])
}

func (s *EditorAPISuite) TestSaveDraft_OverwritesPrevious() {
	token := s.authToken()
	questionID := "question-overwrite"

	for _, value := range []string{"draft one", "draft two"} {
		w := s.request(http.MethodPut, "/api/v1/drafts", domain.SaveDraftRequest{
			QuestionID: questionID,
			Code:       []domain.LanguageCode{{Language: "python", Value: value}},
		}, token)
		s.Require().Equal(http.StatusOK, w.Code)
	}

	w := s.request(http.MethodGet, "/api/v1/drafts/"+questionID, nil, token)
	s.Require().Equal(http.StatusOK, w.Code)

	data := decodeData(s.T(), w.Body.Bytes())
	code := data["code"].([]interface{})
	s.Require().Len(code, 1)
	assert.Equal(s.T(), "draft two", code[0].(map[string]interface{})["value"])

	// Still a single row per (user, question)
	var count int64
	s.db.Model(&domain.CodeDraft{}).
		Where("user_id = ? AND question_id = ?", "user-1", questionID).
		Count(&count)
	assert.Equal(s.T(), int64(1), count)
}

func (s *EditorAPISuite) TestSaveDraft_AllEmptyRejected() {
	token := s.authToken()

	w := s.request(http.MethodPut, "/api/v1/drafts", domain.SaveDraftRequest{
		QuestionID: "question-empty",
		Code: []domain.LanguageCode{
			{Language: "python", Value: "   "},
			{Language: "javascript", Value: "\n\t"},
		},
	}, token)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *EditorAPISuite) TestSaveDraft_SilentAllEmptyIsNoop() {
	token := s.authToken()

	w := s.request(http.MethodPut, "/api/v1/drafts", domain.SaveDraftRequest{
		QuestionID: "question-silent-empty",
		Silent:     true,
		Code:       []domain.LanguageCode{{Language: "python", Value: "   "}},
	}, token)

	// A background autosave of nothing succeeds without writing
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var count int64
	s.db.Model(&domain.CodeDraft{}).
		Where("question_id = ?", "question-silent-empty").
		Count(&count)
	assert.Equal(s.T(), int64(0), count)
}

func (s *EditorAPISuite) TestGetDraft_NotFound() {
	token := s.authToken()

	w := s.request(http.MethodGet, "/api/v1/drafts/question-unseen", nil, token)

	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *EditorAPISuite) TestListDrafts() {
	token := s.authToken()

	w := s.request(http.MethodPut, "/api/v1/drafts", domain.SaveDraftRequest{
		QuestionID: "question-list",
		Code:       []domain.LanguageCode{{Language: "python", Value: "x = 1"}},
	}, token)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, "/api/v1/drafts", nil, token)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "question-list")

	// Meta carries the row count
	var resp struct {
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.GreaterOrEqual(s.T(), resp.Meta.Total, int64(1))
}

// --- Task Tests ---

func (s *EditorAPISuite) TestGetTask() {
	w := s.request(http.MethodGet, "/api/v1/tasks/"+s.quizTaskID, nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	data := decodeData(s.T(), w.Body.Bytes())
	assert.Equal(s.T(), "Loops Quiz", data["title"])

	questions := data["questions"].([]interface{})
	s.Require().Len(questions, 1)
	question := questions[0].(map[string]interface{})
	assert.Equal(s.T(), "code", question["type"])
	assert.Contains(s.T(), question["languages"], "python")
}

func (s *EditorAPISuite) TestGetTask_NotFound() {
	w := s.request(http.MethodGet, "/api/v1/tasks/nonexistent", nil, "")

	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *EditorAPISuite) TestCreateTask_Unauthorized() {
	w := s.request(http.MethodPost, "/api/v1/tasks", domain.CreateTaskRequest{
		CourseID: "course-1",
		Title:    "New Quiz",
		Type:     domain.TaskTypeQuiz,
	}, "")

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *EditorAPISuite) TestCreateTask_ForbiddenForStudents() {
	w := s.request(http.MethodPost, "/api/v1/tasks", domain.CreateTaskRequest{
		CourseID: "course-1",
		Title:    "Sneaky Quiz",
		Type:     domain.TaskTypeQuiz,
	}, s.studentToken())

	assert.Equal(s.T(), http.StatusForbidden, w.Code)
}

func (s *EditorAPISuite) TestCreateAndUpdateTask() {
	token := s.authToken()

	w := s.request(http.MethodPost, "/api/v1/tasks", domain.CreateTaskRequest{
		CourseID: "course-1",
		Title:    "Recursion Quiz",
		Type:     domain.TaskTypeQuiz,
	}, token)
	s.Require().Equal(http.StatusCreated, w.Code)

	data := decodeData(s.T(), w.Body.Bytes())
	taskID := data["id"].(string)
	s.Require().NotEmpty(taskID)

	newTitle := "Recursion Quiz v2"
	w = s.request(http.MethodPut, "/api/v1/tasks/"+taskID, domain.UpdateTaskRequest{
		Title: &newTitle,
		Questions: []domain.UpdateQuestionRequest{
			{Type: "code", Prompt: "Reverse a list recursively.", Languages: []string{"python"}},
		},
	}, token)
	s.Require().Equal(http.StatusOK, w.Code)

	data = decodeData(s.T(), w.Body.Bytes())
	assert.Equal(s.T(), newTitle, data["title"])
	questions := data["questions"].([]interface{})
	s.Require().Len(questions, 1)
}

func (s *EditorAPISuite) TestListCourseTasks() {
	w := s.request(http.MethodGet, "/api/v1/courses/course-1/tasks", nil, "")

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "Loops Quiz")
	assert.Contains(s.T(), w.Body.String(), "Intro to Loops")
}

// --- Material Tests ---

func (s *EditorAPISuite) TestSaveAndPublishMaterial() {
	token := s.authToken()

	w := s.request(http.MethodPut, "/api/v1/tasks/"+s.materialTaskID+"/material", domain.SaveMaterialRequest{
		Blocks: []domain.MaterialBlock{
			{ID: "block-1", Type: "heading", Content: "Loops"},
			{ID: "block-2", Type: "paragraph", Content: "A loop repeats a body."},
		},
		ContentText: "Loops. A loop repeats a body.",
	}, token)
	s.Require().Equal(http.StatusOK, w.Code)

	data := decodeData(s.T(), w.Body.Bytes())
	assert.Equal(s.T(), domain.MaterialStatusDraft, data["status"])

	w = s.request(http.MethodPost, "/api/v1/tasks/"+s.materialTaskID+"/material/publish", nil, token)
	s.Require().Equal(http.StatusOK, w.Code)

	data = decodeData(s.T(), w.Body.Bytes())
	assert.Equal(s.T(), domain.MaterialStatusPublished, data["status"])
	assert.NotNil(s.T(), data["published_at"])

	w = s.request(http.MethodGet, "/api/v1/tasks/"+s.materialTaskID+"/material", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "A loop repeats a body.")
}

func (s *EditorAPISuite) TestDraftMaterial_HiddenFromStudents() {
	taskID := "task-material-draft"
	s.db.Create(&domain.Task{
		ID:       taskID,
		CourseID: "course-1",
		Title:    "Unfinished Lesson",
		Type:     domain.TaskTypeMaterial,
		Status:   "published",
	})

	w := s.request(http.MethodPut, "/api/v1/tasks/"+taskID+"/material", domain.SaveMaterialRequest{
		Blocks:      []domain.MaterialBlock{{ID: "block-1", Type: "paragraph", Content: "Work in progress."}},
		ContentText: "Work in progress.",
	}, s.authToken())
	s.Require().Equal(http.StatusOK, w.Code)

	// Anonymous readers and students see nothing until publish
	w = s.request(http.MethodGet, "/api/v1/tasks/"+taskID+"/material", nil, "")
	assert.Equal(s.T(), http.StatusNotFound, w.Code)

	w = s.request(http.MethodGet, "/api/v1/tasks/"+taskID+"/material", nil, s.studentToken())
	assert.Equal(s.T(), http.StatusNotFound, w.Code)

	// The author keeps editing access
	w = s.request(http.MethodGet, "/api/v1/tasks/"+taskID+"/material", nil, s.authToken())
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "Work in progress.")
}

func (s *EditorAPISuite) TestSaveMaterial_ForbiddenForStudents() {
	w := s.request(http.MethodPut, "/api/v1/tasks/"+s.materialTaskID+"/material", domain.SaveMaterialRequest{
		Blocks: []domain.MaterialBlock{{ID: "block-1", Type: "paragraph", Content: "nope"}},
	}, s.studentToken())

	assert.Equal(s.T(), http.StatusForbidden, w.Code)
}

func (s *EditorAPISuite) TestSaveMaterial_WrongTaskType() {
	token := s.authToken()

	w := s.request(http.MethodPut, "/api/v1/tasks/"+s.quizTaskID+"/material", domain.SaveMaterialRequest{
		Blocks: []domain.MaterialBlock{{ID: "block-1", Type: "paragraph", Content: "nope"}},
	}, token)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *EditorAPISuite) TestMaterialSearch_Unavailable() {
	// No Elasticsearch client is wired in this suite
	w := s.request(http.MethodGet, "/api/v1/materials/search?q=loops", nil, "")

	assert.Equal(s.T(), http.StatusServiceUnavailable, w.Code)
}

func (s *EditorAPISuite) TestMaterialSearch_MissingQuery() {
	w := s.request(http.MethodGet, "/api/v1/materials/search", nil, "")

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

// --- Chat Tests ---

func (s *EditorAPISuite) TestPostAndListChatMessages() {
	token := s.authToken()

	w := s.request(http.MethodPost, "/api/v1/chat", domain.PostChatMessageRequest{
		QuestionID: s.questionID,
		Content:    "```python\nprint(1)\n```",
	}, token)
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.request(http.MethodGet, "/api/v1/chat/"+s.questionID, nil, token)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "print(1)")
	// The token's display name is stamped onto the message
	assert.Contains(s.T(), w.Body.String(), "Tester")
}

func (s *EditorAPISuite) TestPostChatMessage_Unauthorized() {
	w := s.request(http.MethodPost, "/api/v1/chat", domain.PostChatMessageRequest{
		QuestionID: s.questionID,
		Content:    "hello",
	}, "")

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

// --- Integration Tests ---

func (s *EditorAPISuite) TestIntegrationLifecycle() {
	token := s.authToken()

	w := s.request(http.MethodPost, "/api/v1/integrations", domain.CreateIntegrationRequest{
		Provider:    domain.ProviderNotion,
		AccessToken: "secret-token",
	}, token)
	s.Require().Equal(http.StatusCreated, w.Code)

	data := decodeData(s.T(), w.Body.Bytes())
	assert.Equal(s.T(), domain.ProviderNotion, data["provider"])
	assert.Equal(s.T(), true, data["connected"])
	// Token never leaves the server
	assert.NotContains(s.T(), w.Body.String(), "secret-token")

	w = s.request(http.MethodGet, "/api/v1/integrations", nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), domain.ProviderNotion)

	w = s.request(http.MethodDelete, "/api/v1/integrations/"+domain.ProviderNotion, nil, token)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	w = s.request(http.MethodDelete, "/api/v1/integrations/"+domain.ProviderNotion, nil, token)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

// --- Notion OAuth Tests ---

func (s *EditorAPISuite) TestNotionConnect_RedirectsToAuthorize() {
	token := s.authToken()

	w := s.request(http.MethodGet, "/api/v1/integrations/notion/connect?return_to=/course/1", nil, token)

	s.Require().Equal(http.StatusTemporaryRedirect, w.Code)

	location := w.Header().Get("Location")
	assert.True(s.T(), strings.HasPrefix(location, "https://api.notion.com/v1/oauth/authorize"))
	assert.Contains(s.T(), location, "client_id=test-client-id")
	assert.Contains(s.T(), location, "state=")

	// CSRF cookie mirrors the state parameter
	cookies := w.Result().Cookies()
	var found bool
	for _, cookie := range cookies {
		if cookie.Name == "notion_oauth_state" {
			found = true
			assert.Contains(s.T(), location, "state="+cookie.Value)
		}
	}
	assert.True(s.T(), found)
}

func (s *EditorAPISuite) TestNotionConnect_Unauthorized() {
	w := s.request(http.MethodGet, "/api/v1/integrations/notion/connect", nil, "")

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

// --- Media Tests ---

func (s *EditorAPISuite) TestMediaUpload_StorageDisabled() {
	token := s.authToken()

	w := s.request(http.MethodPost, "/api/v1/media", nil, token)

	assert.Equal(s.T(), http.StatusServiceUnavailable, w.Code)
}
