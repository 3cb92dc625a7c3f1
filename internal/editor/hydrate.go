package editor

import (
	"context"
	"regexp"
	"strings"

	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/dalmia/sensai-backend/pkg/logger"
)

var fencedBlockRe = regexp.MustCompile("(?s)```([a-zA-Z0-9+#-]*)\n(.*?)```")

// Hydrate fills the editor with the best available content: the stored
// draft when present, otherwise code extracted from the conversation
// transcript, otherwise empty editors per language. Call it after
// NewSession; the editor is usable before it returns.
func (s *Session) Hydrate(ctx context.Context, transcript []domain.ChatMessage) {
	s.mu.Lock()
	userID, questionID := s.userID, s.questionID
	s.mu.Unlock()

	var stored []domain.LanguageCode
	if questionID != "" {
		var err error
		stored, err = s.api.GetDraft(ctx, userID, questionID)
		if err != nil {
			log := logger.WithQuestion(userID, questionID)
			log.Warn().Err(err).Msg("draft hydration failed, falling back to transcript")
		}
	}

	if hasContent(stored) {
		s.applyDraft(stored)
		return
	}

	if extracted := ExtractTranscriptCode(transcript, s.languages); len(extracted) > 0 {
		s.mu.Lock()
		for lang, code := range extracted {
			s.codeByLanguage[lang] = code
		}
		s.mu.Unlock()
	}
}

// applyDraft overwrites the editor content with the stored draft. The
// stored draft always wins over transcript-derived code.
func (s *Session) applyDraft(entries []domain.LanguageCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		s.codeByLanguage[entry.Language] = entry.Value
	}
}

func hasContent(entries []domain.LanguageCode) bool {
	for _, entry := range entries {
		if strings.TrimSpace(entry.Value) != "" {
			return true
		}
	}
	return false
}

// ExtractTranscriptCode pulls the most recent fenced code block per
// language out of the user's conversation turns. Blocks without a
// language tag go to the first configured language.
func ExtractTranscriptCode(transcript []domain.ChatMessage, languages []string) map[string]string {
	known := make(map[string]bool, len(languages))
	for _, lang := range languages {
		known[strings.ToLower(lang)] = true
	}

	found := make(map[string]string)
	for _, msg := range transcript {
		if msg.Role != domain.ChatRoleUser {
			continue
		}
		for _, match := range fencedBlockRe.FindAllStringSubmatch(msg.Content, -1) {
			lang := strings.ToLower(match[1])
			code := match[2]
			if lang == "" && len(languages) > 0 {
				lang = strings.ToLower(languages[0])
			}
			if !known[lang] {
				continue
			}
			// later turns overwrite earlier ones
			found[lang] = code
		}
	}
	return found
}
