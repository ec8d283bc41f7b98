// Package trace implements a minimal trace-tree builder: transactions own
// child spans carrying timing, tags, and status, serializable to a
// transaction event.
package trace

import (
	"sync"
	"time"

	"github.com/tempslabs/errtrack/internal/protocol"
)

// Status is the outcome recorded on a finished span or transaction.
type Status string

const (
	StatusOK               Status = "ok"
	StatusCancelled        Status = "cancelled"
	StatusUnknown          Status = "unknown"
	StatusInternalError    Status = "internal_error"
	StatusDeadlineExceeded Status = "deadline_exceeded"
)

// SpanContext supplies creation parameters for a child span.
type SpanContext struct {
	Op string
}

// Span is one node of a trace tree. A span is structurally a sub-transaction
// without a name: it exposes the same mutation operations and can itself
// spawn children.
type Span struct {
	mu           sync.Mutex
	TraceID      string
	SpanID       string
	ParentSpanID string
	Op           string
	Sampled      bool

	status   Status
	tags     map[string]string
	data     map[string]any
	start    time.Time
	end      *time.Time
	children []*Span
}

// SetTag sets a tag on the span. Allowed even after Finish.
func (s *Span) SetTag(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tags == nil {
		s.tags = map[string]string{}
	}
	s.tags[key] = value
}

// SetData attaches arbitrary data to the span.
func (s *Span) SetData(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = map[string]any{}
	}
	s.data[key] = value
}

// SetStatus records the span outcome.
func (s *Span) SetStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Status returns the recorded outcome.
func (s *Span) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// StartTime returns the span's start timestamp.
func (s *Span) StartTime() time.Time {
	return s.start
}

// EndTime returns the end timestamp, or nil while unfinished.
func (s *Span) EndTime() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.end
}

// StartChild creates a new span inheriting this span's trace id and sampled
// flag, with this span's id as its parent. The child is recorded in the
// creator's tree and returned.
func (s *Span) StartChild(ctx SpanContext) *Span {
	child := &Span{
		TraceID:      s.TraceID,
		SpanID:       NewSpanID(),
		ParentSpanID: s.SpanID,
		Op:           ctx.Op,
		Sampled:      s.Sampled,
		start:        time.Now().UTC(),
	}
	s.mu.Lock()
	s.children = append(s.children, child)
	s.mu.Unlock()
	return child
}

// Finish stamps the end timestamp. Idempotent: later calls no-op. Mutation
// of tags and data stays possible after finishing; only the end timestamp
// is frozen.
func (s *Span) Finish() {
	s.finish()
}

// finish reports whether this call transitioned the span to finished.
func (s *Span) finish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.end != nil {
		return false
	}
	now := time.Now().UTC()
	s.end = &now
	return true
}

// wire converts the span subtree rooted here into flat wire spans.
func (s *Span) wire(out []protocol.Span) []protocol.Span {
	s.mu.Lock()
	ws := protocol.Span{
		TraceID:        s.TraceID,
		SpanID:         s.SpanID,
		ParentSpanID:   s.ParentSpanID,
		Op:             s.Op,
		Status:         string(s.status),
		StartTimestamp: s.start,
		Timestamp:      s.end,
		Tags:           copyTags(s.tags),
		Data:           copyData(s.data),
	}
	children := make([]*Span, len(s.children))
	copy(children, s.children)
	s.mu.Unlock()

	out = append(out, ws)
	for _, c := range children {
		out = c.wire(out)
	}
	return out
}

func copyTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}

func copyData(data map[string]any) map[string]any {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
