// Package authbridge models the opener side of a popup OAuth handshake as a
// message-passing channel: a single-use subscription guarded by an origin
// predicate, torn down on the first accepted message.
package authbridge

import (
	"errors"
	"sync"
)

// Message types posted by the popup back to its opener.
const (
	TypeAuthSuccess = "NOTION_AUTH_SUCCESS"
	TypeAuthError   = "NOTION_AUTH_ERROR"
)

// GenericAuthError is shown when the provider reports failure without detail.
const GenericAuthError = "Authentication failed"

// ErrPopupBlocked is returned when the window opener refuses to open the
// popup. There is no retry; the caller surfaces the error immediately.
var ErrPopupBlocked = errors.New("popup blocked")

// Message is a cross-window message received by the opener.
type Message struct {
	Type        string
	Origin      string
	AccessToken string
	Error       string
}

// Result is the outcome of a completed handshake.
type Result struct {
	AccessToken string
	Err         string
}

// Listener is a single-use subscription for handshake messages. Messages
// whose origin fails the predicate, or whose type is not a handshake type,
// are ignored without touching state. The first accepted message invokes
// the handler exactly once and tears the listener down.
type Listener struct {
	mu       sync.Mutex
	originOK func(string) bool
	handler  func(Result)
	active   bool
}

// NewListener subscribes a handler behind an origin predicate.
func NewListener(originOK func(string) bool, handler func(Result)) *Listener {
	return &Listener{
		originOK: originOK,
		handler:  handler,
		active:   true,
	}
}

// NewSameOriginListener subscribes a handler accepting only the given origin.
func NewSameOriginListener(origin string, handler func(Result)) *Listener {
	return NewListener(func(o string) bool { return o == origin }, handler)
}

// Deliver feeds a message to the listener. It returns true when the message
// was accepted; ignored messages (wrong origin, foreign type, or arriving
// after teardown) return false and leave all state unchanged.
func (l *Listener) Deliver(msg Message) bool {
	l.mu.Lock()
	if !l.active || !l.originOK(msg.Origin) {
		l.mu.Unlock()
		return false
	}
	if msg.Type != TypeAuthSuccess && msg.Type != TypeAuthError {
		l.mu.Unlock()
		return false
	}

	// Tear down before invoking the handler so a re-entrant Deliver is a no-op.
	l.active = false
	handler := l.handler
	l.mu.Unlock()

	res := Result{AccessToken: msg.AccessToken}
	if msg.Type == TypeAuthError {
		res.Err = msg.Error
		if res.Err == "" {
			res.Err = GenericAuthError
		}
	}
	handler(res)
	return true
}

// Active reports whether the subscription is still live.
func (l *Listener) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Close tears the subscription down without delivering anything.
func (l *Listener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = false
}

// Opener opens the popup window for an authorization URL. Implementations
// return ErrPopupBlocked when the environment refuses to open it.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(url string) error

// Open implements Opener.
func (f OpenerFunc) Open(url string) error { return f(url) }

// Flow runs the popup variant of the handshake: open the popup, then wait
// for exactly one same-origin handshake message.
type Flow struct {
	opener Opener
	origin string
}

// NewFlow creates a popup flow for the given opener and expected origin.
func NewFlow(opener Opener, origin string) *Flow {
	return &Flow{opener: opener, origin: origin}
}

// Start opens the popup and returns the listener awaiting its message.
// A blocked popup fails immediately with ErrPopupBlocked and no listener.
func (f *Flow) Start(authURL string, handler func(Result)) (*Listener, error) {
	if err := f.opener.Open(authURL); err != nil {
		return nil, ErrPopupBlocked
	}
	return NewSameOriginListener(f.origin, handler), nil
}
