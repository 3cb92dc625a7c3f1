package editor

import (
	"context"
	"strings"

	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/dalmia/sensai-backend/pkg/logger"
)

// armAutosave (re)starts the debounce timer. Editing without a bound
// question never schedules a write.
func (s *Session) armAutosave() {
	s.mu.Lock()
	questionID := s.questionID
	closed := s.closed
	s.mu.Unlock()

	if questionID == "" || closed {
		return
	}
	s.autosave.Arm(s.delay)
}

// fireAutosave writes the current code as a silent background save.
// Failures are logged and never surfaced.
func (s *Session) fireAutosave() {
	s.mu.Lock()
	if s.closed || s.questionID == "" {
		s.mu.Unlock()
		return
	}
	req := s.buildSaveRequestLocked(true)
	userID := s.userID
	s.mu.Unlock()

	// nothing typed yet, nothing to persist
	if allEmpty(req.Code) {
		return
	}

	if err := s.api.SaveDraft(context.Background(), userID, req); err != nil {
		log := logger.WithQuestion(userID, req.QuestionID)
		log.Warn().Err(err).Msg("autosave failed")
	}
}

func allEmpty(code []domain.LanguageCode) bool {
	for _, entry := range code {
		if strings.TrimSpace(entry.Value) != "" {
			return false
		}
	}
	return true
}

// buildSaveRequestLocked snapshots the code for all languages. Caller
// holds s.mu.
func (s *Session) buildSaveRequestLocked(silent bool) *domain.SaveDraftRequest {
	code := make([]domain.LanguageCode, 0, len(s.languages))
	for _, lang := range s.languages {
		code = append(code, domain.LanguageCode{Language: lang, Value: s.codeByLanguage[lang]})
	}
	return &domain.SaveDraftRequest{
		QuestionID: s.questionID,
		Code:       code,
		Silent:     silent,
	}
}
