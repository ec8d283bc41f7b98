// Package scope holds the contextual state merged onto captured events:
// user, tags, extra data, named contexts, severity level, and a bounded
// breadcrumb trail. A Hub stacks scopes so context can be overridden for
// one logical operation without leaking out of it.
package scope

import (
	"sync"
	"time"

	"github.com/tempslabs/errtrack/internal/protocol"
)

// Scope is a mutable bag of contextual state. Safe for concurrent use.
type Scope struct {
	mu             sync.Mutex
	user           *protocol.User
	tags           map[string]string
	extra          map[string]any
	contexts       map[string]map[string]any
	level          protocol.Level
	breadcrumbs    []protocol.Breadcrumb
	maxBreadcrumbs int
}

// New creates an empty scope whose breadcrumb trail is bounded to
// maxBreadcrumbs entries.
func New(maxBreadcrumbs int) *Scope {
	return &Scope{
		tags:           map[string]string{},
		extra:          map[string]any{},
		contexts:       map[string]map[string]any{},
		breadcrumbs:    []protocol.Breadcrumb{},
		maxBreadcrumbs: maxBreadcrumbs,
	}
}

// SetUser replaces the scope user wholesale. Nil clears it.
func (s *Scope) SetUser(u *protocol.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.user = nil
		return
	}
	copied := *u
	s.user = &copied
}

// SetTag sets a single tag.
func (s *Scope) SetTag(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[key] = value
}

// SetTags shallow-merges tags into the tag map.
func (s *Scope) SetTags(tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range tags {
		s.tags[k] = v
	}
}

// SetExtra sets a single extra value.
func (s *Scope) SetExtra(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extra[key] = value
}

// SetExtras shallow-merges values into the extra map.
func (s *Scope) SetExtras(extra map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range extra {
		s.extra[k] = v
	}
}

// SetContext sets a named context object. A nil value removes the key.
func (s *Scope) SetContext(key string, ctx map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx == nil {
		delete(s.contexts, key)
		return
	}
	s.contexts[key] = ctx
}

// SetLevel sets the scope's default severity. Events that already carry a
// level are not affected.
func (s *Scope) SetLevel(level protocol.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = level
}

// AddBreadcrumb appends a breadcrumb, stamping the current time when the
// caller supplied none, and evicts the oldest entries past the bound.
func (s *Scope) AddBreadcrumb(b protocol.Breadcrumb) {
	if b.Timestamp.IsZero() {
		b.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breadcrumbs = append(s.breadcrumbs, b)
	for len(s.breadcrumbs) > s.maxBreadcrumbs {
		s.breadcrumbs = s.breadcrumbs[1:]
	}
}

// ClearBreadcrumbs drops the breadcrumb trail.
func (s *Scope) ClearBreadcrumbs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breadcrumbs = []protocol.Breadcrumb{}
}

// Clear resets every field to its empty default, breadcrumbs included.
func (s *Scope) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.tags = map[string]string{}
	s.extra = map[string]any{}
	s.contexts = map[string]map[string]any{}
	s.level = ""
	s.breadcrumbs = []protocol.Breadcrumb{}
}

// Clone produces an independent copy sharing the same breadcrumb bound.
// Mutating the clone never affects the original and vice versa.
func (s *Scope) Clone() *Scope {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := New(s.maxBreadcrumbs)
	if s.user != nil {
		u := *s.user
		c.user = &u
	}
	for k, v := range s.tags {
		c.tags[k] = v
	}
	for k, v := range s.extra {
		c.extra[k] = v
	}
	for k, v := range s.contexts {
		inner := make(map[string]any, len(v))
		for ik, iv := range v {
			inner[ik] = iv
		}
		c.contexts[k] = inner
	}
	c.level = s.level
	c.breadcrumbs = append(c.breadcrumbs, s.breadcrumbs...)
	return c
}

// ApplyToEvent overlays the scope onto an event and returns the same event.
// Fields the event already set take precedence: user fields merge per-field,
// tags/extra/contexts merge per-key, the scope level applies only when the
// event has none. Scope breadcrumbs precede the event's own.
func (s *Scope) ApplyToEvent(ev *protocol.Event) *protocol.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil {
		if ev.User == nil {
			u := *s.user
			ev.User = &u
		} else {
			if ev.User.ID == "" {
				ev.User.ID = s.user.ID
			}
			if ev.User.Username == "" {
				ev.User.Username = s.user.Username
			}
			if ev.User.Email == "" {
				ev.User.Email = s.user.Email
			}
			if ev.User.IPAddress == "" {
				ev.User.IPAddress = s.user.IPAddress
			}
		}
	}

	if len(s.tags) > 0 {
		if ev.Tags == nil {
			ev.Tags = map[string]string{}
		}
		for k, v := range s.tags {
			if _, ok := ev.Tags[k]; !ok {
				ev.Tags[k] = v
			}
		}
	}

	if len(s.extra) > 0 {
		if ev.Extra == nil {
			ev.Extra = map[string]any{}
		}
		for k, v := range s.extra {
			if _, ok := ev.Extra[k]; !ok {
				ev.Extra[k] = v
			}
		}
	}

	if len(s.contexts) > 0 {
		if ev.Contexts == nil {
			ev.Contexts = map[string]any{}
		}
		for k, v := range s.contexts {
			if _, ok := ev.Contexts[k]; !ok {
				ev.Contexts[k] = v
			}
		}
	}

	if ev.Level == "" && s.level != "" {
		ev.Level = s.level
	}

	if len(s.breadcrumbs) > 0 {
		merged := make([]protocol.Breadcrumb, 0, len(s.breadcrumbs)+len(ev.Breadcrumbs))
		merged = append(merged, s.breadcrumbs...)
		merged = append(merged, ev.Breadcrumbs...)
		ev.Breadcrumbs = merged
	}

	return ev
}
