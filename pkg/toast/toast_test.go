package toast

import (
	"testing"
	"time"

	"github.com/dalmia/sensai-backend/pkg/sched"
	"github.com/stretchr/testify/assert"
)

func TestShow_MakesToastVisible(t *testing.T) {
	s := sched.NewManual()
	m := NewManager(s)

	m.Show(KindSuccess, "Code Saved")

	assert.True(t, m.Visible())
	assert.Equal(t, "Code Saved", m.Current().Message)
	assert.Equal(t, KindSuccess, m.Current().Kind)
}

func TestTimeout_HidesToast(t *testing.T) {
	s := sched.NewManual()
	m := NewManager(s)

	m.Show(KindSuccess, "Code Saved")
	s.Fire()

	assert.False(t, m.Visible())
	assert.Nil(t, m.Current())
}

func TestShow_ReplacesVisibleToastAndRestartsTimeout(t *testing.T) {
	s := sched.NewManual()
	m := NewManager(s)

	m.Show(KindSuccess, "Code Saved")
	m.Show(KindError, "Not allowed")

	// Only one toast at a time, content replaced
	assert.Equal(t, "Not allowed", m.Current().Message)
	assert.Equal(t, 1, s.Armed())

	s.Fire()
	assert.False(t, m.Visible())
}

func TestDismiss_HidesToastAndCancelsTimeout(t *testing.T) {
	s := sched.NewManual()
	m := NewManager(s)

	m.Show(KindInfo, "hello")
	m.Dismiss()

	assert.False(t, m.Visible())
	assert.Equal(t, 0, s.Armed())

	// Firing after dismiss must not resurrect anything
	s.Fire()
	assert.False(t, m.Visible())
}

func TestDismiss_NoToastIsNoop(t *testing.T) {
	s := sched.NewManual()

	observed := 0
	m := NewManager(s, WithObserver(func(*Toast) { observed++ }))

	m.Dismiss()
	assert.Equal(t, 0, observed)
}

func TestObserver_SeesShowAndHide(t *testing.T) {
	s := sched.NewManual()

	var states []*Toast
	m := NewManager(s, WithObserver(func(tst *Toast) { states = append(states, tst) }))

	m.Show(KindSuccess, "saved")
	s.Fire()

	if assert.Len(t, states, 2) {
		assert.Equal(t, "saved", states[0].Message)
		assert.Nil(t, states[1])
	}
}

func TestWithDuration_Override(t *testing.T) {
	s := sched.NewManual()
	m := NewManager(s, WithDuration(100*time.Millisecond))

	m.Show(KindSuccess, "saved")
	assert.True(t, m.Visible())
	assert.Equal(t, 100*time.Millisecond, m.duration)
}
