package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalmia/sensai-backend/internal/domain"
)

// DraftAPI is the remote draft store consumed by the editor session.
// Implementations must be safe for concurrent use.
type DraftAPI interface {
	// GetDraft reads the stored draft for (user, question). A missing
	// draft returns (nil, nil).
	GetDraft(ctx context.Context, userID, questionID string) ([]domain.LanguageCode, error)
	// SaveDraft overwrites the draft for (user, question)
	SaveDraft(ctx context.Context, userID string, req *domain.SaveDraftRequest) error
}

// HTTPDraftAPI talks to the backend draft endpoints over JSON
type HTTPDraftAPI struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewHTTPDraftAPI creates an HTTPDraftAPI. A nil httpClient gets a
// default with a 10s timeout.
func NewHTTPDraftAPI(baseURL, authToken string, httpClient *http.Client) *HTTPDraftAPI {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPDraftAPI{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: httpClient,
	}
}

func (a *HTTPDraftAPI) GetDraft(ctx context.Context, userID, questionID string) ([]domain.LanguageCode, error) {
	endpoint := fmt.Sprintf("%s/v1/drafts/%s", a.baseURL, url.PathEscape(questionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	a.setHeaders(req)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("draft read failed with status %d", resp.StatusCode)
	}

	var envelope struct {
		Data domain.DraftResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	return envelope.Data.Code, nil
}

func (a *HTTPDraftAPI) SaveDraft(ctx context.Context, userID string, req *domain.SaveDraftRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	endpoint := a.baseURL + "/v1/drafts"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	a.setHeaders(httpReq)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("draft save failed with status %d", resp.StatusCode)
	}
	return nil
}

func (a *HTTPDraftAPI) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if a.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.authToken)
	}
}
