package domain

import "time"

// Integration providers
const (
	ProviderNotion = "notion"
)

// Integration is a stored third-party OAuth credential for a user.
// One record per (user, provider).
type Integration struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        string     `gorm:"column:user_id;size:64;not null;uniqueIndex:idx_user_provider" json:"user_id"`
	Provider      string     `gorm:"column:provider;size:32;not null;uniqueIndex:idx_user_provider" json:"provider"`
	AccessToken   string     `gorm:"column:access_token;size:512;not null" json:"-"`
	WorkspaceID   string     `gorm:"column:workspace_id;size:128" json:"workspace_id"`
	WorkspaceName string     `gorm:"column:workspace_name;size:255" json:"workspace_name"`
	BotID         string     `gorm:"column:bot_id;size:128" json:"-"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt     *time.Time `gorm:"column:deleted_at;index" json:"-"`
}

func (Integration) TableName() string {
	return "integrations"
}

// CreateIntegrationRequest persists a token obtained through the popup
// flow, where the client rather than the callback holds the token.
type CreateIntegrationRequest struct {
	Provider    string `json:"provider" binding:"required,oneof=notion"`
	AccessToken string `json:"access_token" binding:"required"`
}

type IntegrationResponse struct {
	ID            uint      `json:"id"`
	Provider      string    `json:"provider"`
	WorkspaceID   string    `json:"workspace_id,omitempty"`
	WorkspaceName string    `json:"workspace_name,omitempty"`
	Connected     bool      `json:"connected"`
	CreatedAt     time.Time `json:"created_at"`
}

// NotionTokenResponse is the token endpoint's reply.
type NotionTokenResponse struct {
	AccessToken   string `json:"access_token"`
	BotID         string `json:"bot_id"`
	WorkspaceID   string `json:"workspace_id"`
	WorkspaceName string `json:"workspace_name"`
	Error         string `json:"error"`
	ErrorDesc     string `json:"error_description"`
}

// NotionPage is the proxied page content returned to the editor embed.
type NotionPage struct {
	PageID string                   `json:"page_id"`
	Title  string                   `json:"title"`
	Blocks []map[string]interface{} `json:"blocks"`
}
