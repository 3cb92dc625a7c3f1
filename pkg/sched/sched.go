// Package sched provides an explicit, cancellable scheduled task: a timer
// that is armed, cancelled, or fired as a first-class operation instead of
// a raw timer handle captured in a closure. The Scheduler interface lets
// callers substitute a manual implementation in tests.
package sched

import (
	"sync"
	"time"
)

// Task is a single-shot timer with explicit arm/cancel semantics.
// Arming an already armed task restarts it.
type Task interface {
	Arm(d time.Duration)
	Cancel()
	Armed() bool
}

// Scheduler creates tasks bound to a fire callback.
type Scheduler interface {
	NewTask(fire func()) Task
}

// New returns a Scheduler backed by the runtime timer (time.AfterFunc).
func New() Scheduler {
	return &realScheduler{}
}

type realScheduler struct{}

func (s *realScheduler) NewTask(fire func()) Task {
	return &realTask{fire: fire}
}

type realTask struct {
	mu    sync.Mutex
	timer *time.Timer
	armed bool
	fire  func()
}

func (t *realTask) Arm(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.armed = true
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		t.armed = false
		t.mu.Unlock()
		t.fire()
	})
}

func (t *realTask) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.armed = false
}

func (t *realTask) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

// Manual is a Scheduler for tests: armed tasks fire only when the test
// calls Fire, never from a background timer.
type Manual struct {
	mu    sync.Mutex
	tasks []*manualTask
}

// NewManual creates a manual test scheduler.
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) NewTask(fire func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTask{fire: fire}
	m.tasks = append(m.tasks, t)
	return t
}

// Fire fires every currently armed task once, synchronously.
func (m *Manual) Fire() {
	m.mu.Lock()
	tasks := make([]*manualTask, len(m.tasks))
	copy(tasks, m.tasks)
	m.mu.Unlock()

	for _, t := range tasks {
		t.fireIfArmed()
	}
}

// Armed reports how many tasks are currently armed.
func (m *Manual) Armed() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tasks {
		if t.Armed() {
			n++
		}
	}
	return n
}

type manualTask struct {
	mu    sync.Mutex
	armed bool
	delay time.Duration
	fire  func()
}

func (t *manualTask) Arm(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = true
	t.delay = d
}

func (t *manualTask) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = false
}

func (t *manualTask) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

func (t *manualTask) fireIfArmed() {
	t.mu.Lock()
	if !t.armed {
		t.mu.Unlock()
		return
	}
	t.armed = false
	fire := t.fire
	t.mu.Unlock()

	fire()
}
