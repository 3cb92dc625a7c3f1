package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dalmia/sensai-backend/internal/common"
	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/dalmia/sensai-backend/internal/eventlog"
	"github.com/dalmia/sensai-backend/internal/repository"
	"github.com/dalmia/sensai-backend/pkg/cache"
	"github.com/dalmia/sensai-backend/pkg/logger"
	"gorm.io/gorm"
)

const maxCodeBytes = 262144 // per language entry

// DraftService handles code draft business logic
type DraftService interface {
	// Save overwrites the draft for (user, question)
	Save(userID string, req *domain.SaveDraftRequest) (*domain.DraftResponse, error)
	// Get returns the stored draft for (user, question)
	Get(userID, questionID string) (*domain.DraftResponse, error)
	// List returns all drafts of a user with the total count
	List(userID string) ([]domain.DraftResponse, int64, error)
}

type draftService struct {
	repo   repository.DraftRepository
	cache  cache.Service
	events eventlog.Sink
}

// NewDraftService creates a new DraftService
func NewDraftService(repo repository.DraftRepository, cacheService cache.Service, events eventlog.Sink) DraftService {
	if events == nil {
		events = eventlog.NopSink{}
	}
	return &draftService{repo: repo, cache: cacheService, events: events}
}

// Save overwrites the stored draft. An all-empty payload is rejected so
// that a stray write cannot wipe a real draft.
func (s *draftService) Save(userID string, req *domain.SaveDraftRequest) (*domain.DraftResponse, error) {
	entries := make([]domain.LanguageCode, 0, len(req.Code))
	empty := true
	size := 0
	for _, entry := range req.Code {
		value := entry.Value
		if len(value) > maxCodeBytes {
			// cut on a rune boundary so a multi-byte character is never
			// split mid-sequence
			cut := maxCodeBytes
			for cut > 0 && !utf8.RuneStart(value[cut]) {
				cut--
			}
			value = value[:cut]
		}
		if strings.TrimSpace(value) != "" {
			empty = false
		}
		size += len(value)
		entries = append(entries, domain.LanguageCode{Language: entry.Language, Value: value})
	}
	if empty {
		return nil, common.ErrEmptyDraft
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}

	draft := &domain.CodeDraft{
		UserID:     userID,
		QuestionID: req.QuestionID,
		Code:       payload,
	}
	if err := s.repo.Save(draft); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateDraft(context.Background(), userID, req.QuestionID); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("failed to invalidate draft cache")
	}

	kind := eventlog.KindManualSave
	if req.Silent {
		kind = eventlog.KindAutosave
	}
	go s.events.Record(context.Background(), eventlog.SaveEvent{
		UserID:     userID,
		QuestionID: req.QuestionID,
		Kind:       kind,
		ByteSize:   size,
	})

	return &domain.DraftResponse{
		UserID:     userID,
		QuestionID: req.QuestionID,
		Code:       entries,
		UpdatedAt:  draft.UpdatedAt,
	}, nil
}

// Get returns the stored draft, serving from cache when possible
func (s *draftService) Get(userID, questionID string) (*domain.DraftResponse, error) {
	ctx := context.Background()

	if data, err := s.cache.GetDraft(ctx, userID, questionID); err == nil {
		var cached domain.DraftResponse
		if json.Unmarshal(data, &cached) == nil {
			return &cached, nil
		}
	}

	draft, err := s.repo.FindByUserAndQuestion(userID, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrDraftNotFound
		}
		return nil, err
	}

	resp, err := toDraftResponse(draft)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetDraft(ctx, userID, questionID, resp); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("failed to cache draft")
	}
	return resp, nil
}

// List returns all drafts of a user with the total row count
func (s *draftService) List(userID string) ([]domain.DraftResponse, int64, error) {
	drafts, err := s.repo.FindByUser(userID)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(userID)
	if err != nil {
		return nil, 0, err
	}

	items := make([]domain.DraftResponse, 0, len(drafts))
	for i := range drafts {
		resp, err := toDraftResponse(&drafts[i])
		if err != nil {
			logger.GetLogger().Warn().Err(err).
				Str("question_id", drafts[i].QuestionID).
				Msg("skipping undecodable draft")
			continue
		}
		items = append(items, *resp)
	}
	return items, total, nil
}

func toDraftResponse(draft *domain.CodeDraft) (*domain.DraftResponse, error) {
	var entries []domain.LanguageCode
	if err := json.Unmarshal(draft.Code, &entries); err != nil {
		return nil, err
	}
	return &domain.DraftResponse{
		UserID:     draft.UserID,
		QuestionID: draft.QuestionID,
		Code:       entries,
		UpdatedAt:  draft.UpdatedAt,
	}, nil
}
