package editor

import (
	"sync"

	"github.com/dalmia/sensai-backend/pkg/toast"
)

// MsgPasteBlocked is shown when a restricted paste is rejected
const MsgPasteBlocked = "Not allowed"

// ClipboardGuard enforces the copy/paste restriction: when disabled,
// only content copied within the session may be pasted back. Foreign
// content is rejected with a notification.
type ClipboardGuard struct {
	mu         sync.Mutex
	enabled    bool
	lastCopied string
	hasCopied  bool
	notifier   *toast.Manager
}

// NewClipboardGuard creates a guard. enabled lifts the restriction
// entirely.
func NewClipboardGuard(enabled bool, notifier *toast.Manager) *ClipboardGuard {
	return &ClipboardGuard{enabled: enabled, notifier: notifier}
}

// RecordCopy remembers content copied within the session
func (g *ClipboardGuard) RecordCopy(content string) {
	g.mu.Lock()
	g.lastCopied = content
	g.hasCopied = true
	g.mu.Unlock()
}

// Paste reports whether the content may be pasted. A rejected paste
// shows the blocked notification.
func (g *ClipboardGuard) Paste(content string) bool {
	g.mu.Lock()
	allowed := g.enabled || (g.hasCopied && content == g.lastCopied)
	notifier := g.notifier
	g.mu.Unlock()

	if !allowed && notifier != nil {
		notifier.Show(toast.KindError, MsgPasteBlocked)
	}
	return allowed
}
