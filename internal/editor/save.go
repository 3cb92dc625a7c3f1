package editor

import (
	"context"
	"strings"

	"github.com/dalmia/sensai-backend/pkg/logger"
	"github.com/dalmia/sensai-backend/pkg/toast"
)

// Notification texts
const (
	MsgCodeSaved    = "Code Saved"
	MsgNoCodeToSave = "No code to save"
	MsgSaveFailed   = "Failed to save code"
)

// SaveNow performs an explicit user-triggered save. It no-ops without
// both a user and a question, refuses to write an all-empty payload,
// and confirms success with a transient notification.
func (s *Session) SaveNow(ctx context.Context) {
	s.mu.Lock()
	if s.userID == "" || s.questionID == "" || s.closed {
		s.mu.Unlock()
		return
	}

	empty := true
	for _, lang := range s.languages {
		if strings.TrimSpace(s.codeByLanguage[lang]) != "" {
			empty = false
			break
		}
	}
	if empty {
		s.mu.Unlock()
		if s.notifier != nil {
			s.notifier.Show(toast.KindInfo, MsgNoCodeToSave)
		}
		return
	}

	req := s.buildSaveRequestLocked(false)
	userID := s.userID
	s.mu.Unlock()

	if err := s.api.SaveDraft(ctx, userID, req); err != nil {
		log := logger.WithQuestion(userID, req.QuestionID)
		log.Error().Err(err).Msg("manual save failed")
		if s.notifier != nil {
			s.notifier.Show(toast.KindError, MsgSaveFailed)
		}
		return
	}

	if s.notifier != nil {
		s.notifier.Show(toast.KindSuccess, MsgCodeSaved)
	}
}
