package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalmia/sensai-backend/internal/common"
	"github.com/dalmia/sensai-backend/internal/middleware"
	"github.com/dalmia/sensai-backend/internal/service"
	"github.com/dalmia/sensai-backend/pkg/authbridge"
	"github.com/dalmia/sensai-backend/pkg/cache"
	"github.com/gin-gonic/gin"
)

const stateTTL = 10 * time.Minute

// oauthState is what the state parameter stands for server side
type oauthState struct {
	UserID   string `json:"user_id"`
	ReturnTo string `json:"return_to"`
	Popup    bool   `json:"popup"`
}

// NotionHandler handles the Notion OAuth handshake and page proxy
type NotionHandler struct {
	notion         service.NotionService
	cache          cache.Service
	allowedOrigins []string
}

// NewNotionHandler creates a new NotionHandler. allowedOrigins bounds
// where the callback may redirect the browser to.
func NewNotionHandler(notion service.NotionService, cacheService cache.Service, allowedOrigins []string) *NotionHandler {
	return &NotionHandler{notion: notion, cache: cacheService, allowedOrigins: allowedOrigins}
}

// Connect handles GET /api/v1/integrations/notion/connect
// @Summary Start the Notion OAuth flow
// @Description Redirects the browser to Notion's authorization page. return_to is round-tripped through state; mode=popup switches the callback to postMessage delivery.
// @Tags integrations
// @Param return_to query string false "URL to return to after the handshake"
// @Param mode query string false "popup for the popup flow"
// @Success 307
// @Failure 401 {object} common.APIResponse
// @Security BearerAuth
// @Router /integrations/notion/connect [get]
func (h *NotionHandler) Connect(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to generate state", nil)
		return
	}
	state := hex.EncodeToString(stateBytes)

	payload := oauthState{
		UserID:   userID,
		ReturnTo: h.sanitizeReturnTo(c.Query("return_to")),
		Popup:    c.Query("mode") == "popup",
	}
	if err := h.cache.Set(c.Request.Context(), stateKey(state), payload, stateTTL); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to store state", err)
		return
	}

	// CSRF double check against the cached state
	c.SetCookie("notion_oauth_state", state, int(stateTTL.Seconds()), "/", "", true, true)

	c.Redirect(http.StatusTemporaryRedirect, h.notion.AuthURL(state))
}

// Callback handles GET /api/v1/integrations/notion/callback
// @Summary Notion OAuth callback
// @Description Exchanges the authorization code and hands the token back to the page that started the flow, by query parameter (redirect flow) or postMessage (popup flow). A provider error skips the exchange entirely.
// @Tags integrations
// @Param code query string false "Authorization code"
// @Param state query string true "Opaque state from the connect step"
// @Param error query string false "Provider error"
// @Success 307
// @Failure 400 {object} common.APIResponse
// @Router /integrations/notion/callback [get]
func (h *NotionHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	payload, err := h.loadState(c, state)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid OAuth state", err)
		return
	}
	c.SetCookie("notion_oauth_state", "", -1, "/", "", true, true)

	// Provider-side cancellation or error: report back, never exchange
	if providerErr := c.Query("error"); providerErr != "" {
		h.finish(c, payload, "", providerErr)
		return
	}

	code := c.Query("code")
	if code == "" {
		h.finish(c, payload, "", "missing_code")
		return
	}

	token, err := h.notion.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		h.finish(c, payload, "", "token_exchange_failed")
		return
	}

	h.finish(c, payload, token.AccessToken, "")
}

// Page handles GET /api/v1/integrations/notion/pages/:pageID
// @Summary Proxy Notion page content
// @Description Fetches the page's block children using the stored credential
// @Tags integrations
// @Produce json
// @Param pageID path string true "Notion page ID"
// @Success 200 {object} common.APIResponse{data=domain.NotionPage}
// @Failure 401 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /integrations/notion/pages/{pageID} [get]
func (h *NotionHandler) Page(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	page, err := h.notion.GetPage(c.Request.Context(), userID, c.Param("pageID"))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrIntegrationNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Notion is not connected", err)
		case errors.Is(err, common.ErrNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Page not found", err)
		case errors.Is(err, common.ErrUnauthorized):
			common.ErrorResponse(c, http.StatusUnauthorized, "Notion credential rejected", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch page", err)
		}
		return
	}

	common.SuccessResponse(c, page, nil)
}

func (h *NotionHandler) loadState(c *gin.Context, state string) (*oauthState, error) {
	if state == "" {
		return nil, common.ErrInvalidInput
	}
	if saved, err := c.Cookie("notion_oauth_state"); err != nil || saved != state {
		return nil, common.ErrInvalidInput
	}

	var payload oauthState
	if err := h.cache.Get(c.Request.Context(), stateKey(state), &payload); err != nil {
		return nil, err
	}
	// single use
	_ = h.cache.Delete(c.Request.Context(), stateKey(state))
	return &payload, nil
}

// finish delivers the handshake result: a postMessage page for the
// popup flow, a redirect with the result appended for the full-page
// flow.
func (h *NotionHandler) finish(c *gin.Context, state *oauthState, accessToken, errCode string) {
	if state.Popup {
		h.renderPopupResult(c, accessToken, errCode)
		return
	}

	target := state.ReturnTo
	if target == "" {
		target = "/"
	}
	if errCode != "" {
		target = appendQueryParam(target, "error", errCode)
	} else {
		target = appendQueryParam(target, "access_token", accessToken)
	}
	c.Redirect(http.StatusTemporaryRedirect, target)
}

var popupResultTmpl = template.Must(template.New("popup").Parse(`<!DOCTYPE html>
<html><body><script>
if (window.opener) {
	window.opener.postMessage({{.Message}}, window.location.origin);
}
window.close();
</script></body></html>`))

// renderPopupResult posts the result to the opener, restricted to the
// current origin, then closes the popup
func (h *NotionHandler) renderPopupResult(c *gin.Context, accessToken, errCode string) {
	msg := map[string]string{}
	if errCode != "" {
		msg["type"] = authbridge.TypeAuthError
		msg["error"] = errCode
	} else {
		msg["type"] = authbridge.TypeAuthSuccess
		msg["accessToken"] = accessToken
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to render result", err)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := popupResultTmpl.Execute(c.Writer, map[string]interface{}{
		"Message": template.JS(raw),
	}); err != nil {
		_ = c.Error(err)
	}
}

func stateKey(state string) string {
	return "oauth:state:" + state
}

// sanitizeReturnTo keeps the callback from redirecting the browser,
// token in hand, to a foreign origin. Same-site paths and absolute
// URLs on an allowed origin pass; everything else falls back to "/".
func (h *NotionHandler) sanitizeReturnTo(returnTo string) string {
	if returnTo == "" {
		return ""
	}

	parsed, err := url.Parse(returnTo)
	if err != nil {
		return ""
	}

	// A relative path. Reject scheme-relative "//host" forms, which
	// browsers treat as absolute.
	if parsed.Scheme == "" && parsed.Host == "" && strings.HasPrefix(parsed.Path, "/") && !strings.HasPrefix(parsed.Path, "//") {
		return returnTo
	}

	origin := parsed.Scheme + "://" + parsed.Host
	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return returnTo
		}
	}
	return ""
}

// appendQueryParam appends key=value to rawURL, keeping any existing
// query intact
func appendQueryParam(rawURL, key, value string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Sprintf("%s?%s=%s", rawURL, key, url.QueryEscape(value))
	}
	q := parsed.Query()
	q.Set(key, value)
	parsed.RawQuery = q.Encode()
	return parsed.String()
}
