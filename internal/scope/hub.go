package scope

import (
	"sync"

	"github.com/tempslabs/errtrack/internal/protocol"
)

// CaptureContext carries one-off context for a single capture call. Either
// set the plain fields, or set Mutate to edit a scope clone directly.
// An explicit Level represents the caller's highest-priority intent and
// overrides even a level the event already carries.
type CaptureContext struct {
	User     *protocol.User
	Tags     map[string]string
	Extra    map[string]any
	Contexts map[string]map[string]any
	Level    protocol.Level
	Mutate   func(*Scope)
}

// Hub maintains an ordered stack of scopes, always containing at least the
// global root scope.
type Hub struct {
	mu    sync.Mutex
	stack []*Scope
}

// NewHub creates a hub seeded with one global scope sized by maxBreadcrumbs.
func NewHub(maxBreadcrumbs int) *Hub {
	return &Hub{stack: []*Scope{New(maxBreadcrumbs)}}
}

// Scope returns the current top-of-stack scope.
func (h *Hub) Scope() *Scope {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack[len(h.stack)-1]
}

// PushScope clones the current top scope and pushes the clone, so nested
// scopes inherit current state. Returns the new scope.
func (h *Hub) PushScope() *Scope {
	h.mu.Lock()
	defer h.mu.Unlock()
	clone := h.stack[len(h.stack)-1].Clone()
	h.stack = append(h.stack, clone)
	return clone
}

// PopScope removes the top scope. No-op when only the root remains.
func (h *Hub) PopScope() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.stack) > 1 {
		h.stack = h.stack[:len(h.stack)-1]
	}
}

// WithScope pushes a temporary scope, invokes fn with it, and pops it again.
// The pop runs even if fn panics.
func (h *Hub) WithScope(fn func(*Scope)) {
	s := h.PushScope()
	defer h.PopScope()
	fn(s)
}

// ConfigureScope invokes fn against the current top scope without push/pop,
// so mutations are permanent for that scope's lifetime.
func (h *Hub) ConfigureScope(fn func(*Scope)) {
	fn(h.Scope())
}

// SetUser sets the user on the current scope.
func (h *Hub) SetUser(u *protocol.User) { h.Scope().SetUser(u) }

// SetTag sets a tag on the current scope.
func (h *Hub) SetTag(key, value string) { h.Scope().SetTag(key, value) }

// SetExtra sets an extra value on the current scope.
func (h *Hub) SetExtra(key string, value any) { h.Scope().SetExtra(key, value) }

// SetContext sets a named context on the current scope.
func (h *Hub) SetContext(key string, ctx map[string]any) { h.Scope().SetContext(key, ctx) }

// SetLevel sets the default severity on the current scope.
func (h *Hub) SetLevel(level protocol.Level) { h.Scope().SetLevel(level) }

// AddBreadcrumb records a breadcrumb on the current scope.
func (h *Hub) AddBreadcrumb(b protocol.Breadcrumb) { h.Scope().AddBreadcrumb(b) }

// ApplyToEvent folds every scope in the stack bottom-to-top onto the event,
// then applies the one-off capture context, if any, on a clone of the top
// scope. Returns the same event.
func (h *Hub) ApplyToEvent(ev *protocol.Event, cc *CaptureContext) *protocol.Event {
	h.mu.Lock()
	scopes := make([]*Scope, len(h.stack))
	copy(scopes, h.stack)
	h.mu.Unlock()

	for _, s := range scopes {
		s.ApplyToEvent(ev)
	}

	if cc == nil {
		return ev
	}

	clone := scopes[len(scopes)-1].Clone()
	if cc.Mutate != nil {
		cc.Mutate(clone)
		return clone.ApplyToEvent(ev)
	}

	if cc.User != nil {
		clone.SetUser(cc.User)
	}
	if cc.Tags != nil {
		clone.SetTags(cc.Tags)
	}
	if cc.Extra != nil {
		clone.SetExtras(cc.Extra)
	}
	for k, v := range cc.Contexts {
		clone.SetContext(k, v)
	}
	if cc.Level != "" {
		clone.SetLevel(cc.Level)
	}
	clone.ApplyToEvent(ev)

	// An explicit capture-context level wins over everything, including a
	// level the event already carried.
	if cc.Level != "" {
		ev.Level = cc.Level
	}
	return ev
}
