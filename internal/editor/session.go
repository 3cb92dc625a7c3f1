package editor

import (
	"sync"
	"time"

	"github.com/dalmia/sensai-backend/pkg/sched"
	"github.com/dalmia/sensai-backend/pkg/toast"
)

// DefaultAutosaveDelay is how long the editor waits after the last
// keystroke before writing a background draft.
const DefaultAutosaveDelay = time.Second

// Session owns the transient editing state for one question: the code
// per language, the view flag, and the armed autosave task. One
// Session per active question; Close it when the question changes.
type Session struct {
	mu sync.Mutex

	userID     string
	questionID string
	languages  []string

	codeByLanguage map[string]string
	viewingCode    bool

	api      DraftAPI
	notifier *toast.Manager
	autosave sched.Task
	delay    time.Duration
	clip     *ClipboardGuard

	closed bool
}

// Options configures a Session
type Options struct {
	UserID     string
	QuestionID string
	// Languages the editor offers. Hydration seeds an empty entry per
	// language when nothing stored or transcript-derived exists.
	Languages []string
	API       DraftAPI
	Notifier  *toast.Manager
	// Scheduler drives the autosave timer; nil uses real time
	Scheduler sched.Scheduler
	// AutosaveDelay overrides DefaultAutosaveDelay when positive
	AutosaveDelay time.Duration
	// CopyPasteEnabled lifts the paste restriction
	CopyPasteEnabled bool
}

// NewSession creates a Session for one (user, question) pair
func NewSession(opts Options) *Session {
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = sched.New()
	}
	delay := opts.AutosaveDelay
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}

	s := &Session{
		userID:         opts.UserID,
		questionID:     opts.QuestionID,
		languages:      opts.Languages,
		codeByLanguage: make(map[string]string, len(opts.Languages)),
		api:            opts.API,
		notifier:       opts.Notifier,
		delay:          delay,
		clip:           NewClipboardGuard(opts.CopyPasteEnabled, opts.Notifier),
	}
	for _, lang := range opts.Languages {
		s.codeByLanguage[lang] = ""
	}
	s.autosave = scheduler.NewTask(s.fireAutosave)
	return s
}

// SetCode records an edit and re-arms the autosave timer
func (s *Session) SetCode(language, value string) {
	s.mu.Lock()
	s.codeByLanguage[language] = value
	s.mu.Unlock()
	s.armAutosave()
}

// Code returns the current code for one language
func (s *Session) Code(language string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codeByLanguage[language]
}

// Snapshot returns a copy of the code for all languages
func (s *Session) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[string]string, len(s.codeByLanguage))
	for lang, code := range s.codeByLanguage {
		snapshot[lang] = code
	}
	return snapshot
}

// SetViewingCode flips the code view flag
func (s *Session) SetViewingCode(viewing bool) {
	s.mu.Lock()
	s.viewingCode = viewing
	s.mu.Unlock()
}

// ViewingCode reports whether the code view is open
func (s *Session) ViewingCode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewingCode
}

// Clipboard returns the session's paste guard
func (s *Session) Clipboard() *ClipboardGuard {
	return s.clip
}

// Close cancels any pending autosave. In-flight writes are not
// interrupted; their results are discarded safely.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.autosave.Cancel()
}
