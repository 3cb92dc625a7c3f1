// Package toast implements the transient notification lifecycle:
// hidden → visible → hidden. At most one toast is visible at a time; a new
// event while one is visible replaces its content and restarts the timeout.
package toast

import (
	"sync"
	"time"

	"github.com/dalmia/sensai-backend/pkg/sched"
)

// DefaultDuration is how long a toast stays visible unless dismissed.
const DefaultDuration = 3500 * time.Millisecond

// Kind classifies a toast for presentation purposes.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Toast is the currently displayed notification.
type Toast struct {
	Kind    Kind
	Message string
}

// Manager owns the single-toast lifecycle. All methods are safe for
// concurrent use.
type Manager struct {
	mu       sync.Mutex
	current  *Toast
	task     sched.Task
	duration time.Duration
	onChange func(*Toast)
}

// Option configures a Manager.
type Option func(*Manager)

// WithDuration overrides the auto-dismiss duration.
func WithDuration(d time.Duration) Option {
	return func(m *Manager) { m.duration = d }
}

// WithObserver registers a callback invoked on every state change with the
// new state (nil when the toast hides).
func WithObserver(fn func(*Toast)) Option {
	return func(m *Manager) { m.onChange = fn }
}

// NewManager creates a toast manager using the given scheduler for the
// auto-dismiss timeout.
func NewManager(s sched.Scheduler, opts ...Option) *Manager {
	m := &Manager{duration: DefaultDuration}
	for _, opt := range opts {
		opt(m)
	}
	m.task = s.NewTask(m.timeout)
	return m
}

// Show displays a toast, replacing any visible one and restarting the
// auto-dismiss timeout.
func (m *Manager) Show(kind Kind, message string) {
	m.mu.Lock()
	m.current = &Toast{Kind: kind, Message: message}
	m.task.Arm(m.duration)
	notify := m.onChange
	cur := *m.current
	m.mu.Unlock()

	if notify != nil {
		notify(&cur)
	}
}

// Dismiss hides the current toast immediately.
func (m *Manager) Dismiss() {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return
	}
	m.current = nil
	m.task.Cancel()
	notify := m.onChange
	m.mu.Unlock()

	if notify != nil {
		notify(nil)
	}
}

// Current returns the visible toast, or nil when hidden.
func (m *Manager) Current() *Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	cur := *m.current
	return &cur
}

// Visible reports whether a toast is currently shown.
func (m *Manager) Visible() bool {
	return m.Current() != nil
}

func (m *Manager) timeout() {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return
	}
	m.current = nil
	notify := m.onChange
	m.mu.Unlock()

	if notify != nil {
		notify(nil)
	}
}
