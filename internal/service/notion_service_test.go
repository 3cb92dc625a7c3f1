package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dalmia/sensai-backend/internal/common"
	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mock IntegrationRepository ---

type mockIntegrationRepo struct {
	mock.Mock
}

func (m *mockIntegrationRepo) Save(integration *domain.Integration) error {
	return m.Called(integration).Error(0)
}

func (m *mockIntegrationRepo) FindByUserAndProvider(userID, provider string) (*domain.Integration, error) {
	args := m.Called(userID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Integration), args.Error(1)
}

func (m *mockIntegrationRepo) FindByUser(userID string) ([]domain.Integration, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Integration), args.Error(1)
}

func (m *mockIntegrationRepo) Delete(userID, provider string) error {
	return m.Called(userID, provider).Error(0)
}

// --- Tests ---

func TestNotionAuthURL_RoundTripsState(t *testing.T) {
	svc := NewNotionService(NotionConfig{
		ClientID:    "client-id",
		RedirectURI: "https://app.example.com/v1/integrations/notion/callback",
	}, nil, nil)

	raw := svc.AuthURL("7f3a9c0d")
	parsed, err := url.Parse(raw)
	assert.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "7f3a9c0d", q.Get("state"))
}

func TestNotionExchangeCode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "authorization_code", body["grant_type"])
		assert.Equal(t, "auth-code", body["code"])

		json.NewEncoder(w).Encode(domain.NotionTokenResponse{
			AccessToken:   "secret-token",
			WorkspaceID:   "ws-1",
			WorkspaceName: "My Workspace",
			BotID:         "bot-1",
		})
	}))
	defer srv.Close()

	svc := NewNotionService(NotionConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     srv.URL,
	}, nil, srv.Client())

	token, err := svc.ExchangeCode(context.Background(), "auth-code")
	assert.NoError(t, err)
	assert.Equal(t, "secret-token", token.AccessToken)
	assert.Equal(t, "ws-1", token.WorkspaceID)
}

func TestNotionExchangeCode_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(domain.NotionTokenResponse{
			Error:     "invalid_grant",
			ErrorDesc: "Invalid code",
		})
	}))
	defer srv.Close()

	svc := NewNotionService(NotionConfig{TokenURL: srv.URL}, nil, srv.Client())

	_, err := svc.ExchangeCode(context.Background(), "bad-code")
	assert.ErrorIs(t, err, common.ErrTokenExchange)
}

func TestNotionConnect_StoresIntegration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.NotionTokenResponse{
			AccessToken: "secret-token",
			WorkspaceID: "ws-1",
		})
	}))
	defer srv.Close()

	repo := new(mockIntegrationRepo)
	repo.On("Save", mock.MatchedBy(func(i *domain.Integration) bool {
		return i.UserID == "user-1" && i.Provider == domain.ProviderNotion && i.AccessToken == "secret-token"
	})).Return(nil)

	svc := NewNotionService(NotionConfig{TokenURL: srv.URL}, repo, srv.Client())

	integration, err := svc.Connect(context.Background(), "user-1", "auth-code")
	assert.NoError(t, err)
	assert.Equal(t, "ws-1", integration.WorkspaceID)
	repo.AssertExpectations(t)
}

func TestNotionConnect_ExchangeFailureWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(domain.NotionTokenResponse{Error: "unauthorized_client"})
	}))
	defer srv.Close()

	repo := new(mockIntegrationRepo)
	svc := NewNotionService(NotionConfig{TokenURL: srv.URL}, repo, srv.Client())

	_, err := svc.Connect(context.Background(), "user-1", "auth-code")
	assert.ErrorIs(t, err, common.ErrTokenExchange)
	repo.AssertNotCalled(t, "Save", mock.Anything)
}

func TestNotionGetPage_UsesStoredToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, notionVersion, r.Header.Get("Notion-Version"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{"type": "paragraph", "id": "block-1"},
			},
		})
	}))
	defer srv.Close()

	repo := new(mockIntegrationRepo)
	repo.On("FindByUserAndProvider", "user-1", domain.ProviderNotion).Return(&domain.Integration{
		UserID:      "user-1",
		Provider:    domain.ProviderNotion,
		AccessToken: "secret-token",
	}, nil)

	svc := NewNotionService(NotionConfig{APIBaseURL: srv.URL}, repo, srv.Client())

	page, err := svc.GetPage(context.Background(), "user-1", "page-1")
	assert.NoError(t, err)
	assert.Equal(t, "page-1", page.PageID)
	assert.Len(t, page.Blocks, 1)
}
