package editor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestHTTPDraftAPI_GetDraft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/drafts/q-1", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": domain.DraftResponse{
				QuestionID: "q-1",
				Code:       []domain.LanguageCode{{Language: "python", Value: "x = 1"}},
			},
		})
	}))
	defer srv.Close()

	api := NewHTTPDraftAPI(srv.URL, "tok", srv.Client())
	code, err := api.GetDraft(context.Background(), "u1", "q-1")

	assert.NoError(t, err)
	assert.Equal(t, "x = 1", code[0].Value)
}

func TestHTTPDraftAPI_GetDraftMissingReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	api := NewHTTPDraftAPI(srv.URL, "tok", srv.Client())
	code, err := api.GetDraft(context.Background(), "u1", "q-404")

	assert.NoError(t, err)
	assert.Nil(t, code)
}

func TestHTTPDraftAPI_SaveDraft(t *testing.T) {
	var got domain.SaveDraftRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/drafts", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	api := NewHTTPDraftAPI(srv.URL, "tok", srv.Client())
	err := api.SaveDraft(context.Background(), "u1", &domain.SaveDraftRequest{
		QuestionID: "q-1",
		Code:       []domain.LanguageCode{{Language: "python", Value: "x = 1"}},
		Silent:     true,
	})

	assert.NoError(t, err)
	assert.Equal(t, "q-1", got.QuestionID)
	assert.True(t, got.Silent)
}

func TestHTTPDraftAPI_SaveDraftServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	api := NewHTTPDraftAPI(srv.URL, "tok", srv.Client())
	err := api.SaveDraft(context.Background(), "u1", &domain.SaveDraftRequest{
		QuestionID: "q-1",
		Code:       []domain.LanguageCode{{Language: "python", Value: "x = 1"}},
	})

	assert.Error(t, err)
}
