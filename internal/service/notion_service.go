package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalmia/sensai-backend/internal/common"
	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/dalmia/sensai-backend/internal/repository"
	"github.com/dalmia/sensai-backend/pkg/logger"
	"gorm.io/gorm"
)

const notionVersion = "2022-06-28"

// NotionConfig holds the OAuth app credentials and endpoints. The
// endpoint fields default to the public Notion API and are overridable
// for tests.
type NotionConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthorizeURL string
	TokenURL     string
	APIBaseURL   string
}

func (c *NotionConfig) applyDefaults() {
	if c.AuthorizeURL == "" {
		c.AuthorizeURL = "https://api.notion.com/v1/oauth/authorize"
	}
	if c.TokenURL == "" {
		c.TokenURL = "https://api.notion.com/v1/oauth/token"
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = "https://api.notion.com/v1"
	}
}

// NotionService handles the Notion OAuth handshake and page proxying
type NotionService interface {
	// AuthURL builds the authorization redirect carrying the given
	// opaque state token
	AuthURL(state string) string
	// Connect exchanges an authorization code and stores the
	// integration for the user
	Connect(ctx context.Context, userID, code string) (*domain.Integration, error)
	// ExchangeCode performs the server-to-server token exchange
	ExchangeCode(ctx context.Context, code string) (*domain.NotionTokenResponse, error)
	// GetPage proxies page block content using the stored credential
	GetPage(ctx context.Context, userID, pageID string) (*domain.NotionPage, error)
}

type notionService struct {
	cfg        NotionConfig
	repo       repository.IntegrationRepository
	httpClient *http.Client
}

// NewNotionService creates a new NotionService. A nil httpClient gets
// a default with a 10s timeout.
func NewNotionService(cfg NotionConfig, repo repository.IntegrationRepository, httpClient *http.Client) NotionService {
	cfg.applyDefaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &notionService{cfg: cfg, repo: repo, httpClient: httpClient}
}

func (s *notionService) AuthURL(state string) string {
	params := url.Values{}
	params.Set("client_id", s.cfg.ClientID)
	params.Set("response_type", "code")
	params.Set("owner", "user")
	params.Set("redirect_uri", s.cfg.RedirectURI)
	if state != "" {
		params.Set("state", state)
	}
	return s.cfg.AuthorizeURL + "?" + params.Encode()
}

// ExchangeCode posts the authorization code to the token endpoint with
// Basic auth of the client credentials
func (s *notionService) ExchangeCode(ctx context.Context, code string) (*domain.NotionTokenResponse, error) {
	body, err := json.Marshal(map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": s.cfg.RedirectURI,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.cfg.ClientID, s.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	var token domain.NotionTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTokenExchange, err)
	}

	if resp.StatusCode != http.StatusOK || token.AccessToken == "" {
		detail := token.Error
		if token.ErrorDesc != "" {
			detail = token.ErrorDesc
		}
		logger.GetLogger().Warn().
			Int("status", resp.StatusCode).
			Str("error", detail).
			Msg("notion token exchange failed")
		return nil, common.ErrTokenExchange
	}

	return &token, nil
}

// Connect exchanges the code and upserts the integration record. No
// record is written when the exchange fails.
func (s *notionService) Connect(ctx context.Context, userID, code string) (*domain.Integration, error) {
	token, err := s.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	integration := &domain.Integration{
		UserID:        userID,
		Provider:      domain.ProviderNotion,
		AccessToken:   token.AccessToken,
		WorkspaceID:   token.WorkspaceID,
		WorkspaceName: token.WorkspaceName,
		BotID:         token.BotID,
	}
	if err := s.repo.Save(integration); err != nil {
		return nil, err
	}
	return integration, nil
}

// GetPage fetches the child blocks of a page through the stored token
func (s *notionService) GetPage(ctx context.Context, userID, pageID string) (*domain.NotionPage, error) {
	integration, err := s.repo.FindByUserAndProvider(userID, domain.ProviderNotion)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrIntegrationNotFound
		}
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/blocks/%s/children?page_size=100", s.cfg.APIBaseURL, url.PathEscape(pageID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+integration.AccessToken)
	req.Header.Set("Notion-Version", notionVersion)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, common.ErrNotFound
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, common.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notion page fetch failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Results []map[string]interface{} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return &domain.NotionPage{
		PageID: pageID,
		Blocks: payload.Results,
	}, nil
}
