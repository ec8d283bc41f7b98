package errtrack

import (
	"github.com/tempslabs/errtrack/internal/protocol"
	"github.com/tempslabs/errtrack/internal/scope"
	"github.com/tempslabs/errtrack/internal/trace"
)

// Severity levels for events and breadcrumbs.
type Level = protocol.Level

const (
	LevelDebug   = protocol.LevelDebug
	LevelInfo    = protocol.LevelInfo
	LevelWarning = protocol.LevelWarning
	LevelError   = protocol.LevelError
	LevelFatal   = protocol.LevelFatal
)

// Event is the unit of telemetry sent to the backend.
type Event = protocol.Event

// Breadcrumb is one entry of the trail leading up to an event.
type Breadcrumb = protocol.Breadcrumb

// User identifies the end user affected by an event.
type User = protocol.User

// Scope is a mutable bag of contextual state merged onto events.
type Scope = scope.Scope

// CaptureContext carries one-off context for a single capture call.
type CaptureContext = scope.CaptureContext

// Transaction is the root of a trace tree.
type Transaction = trace.Transaction

// Span is one node of a trace tree.
type Span = trace.Span

// TransactionContext supplies creation parameters for StartTransaction.
type TransactionContext = trace.TransactionContext

// SpanContext supplies creation parameters for StartChild.
type SpanContext = trace.SpanContext

// SpanStatus is the outcome recorded on a finished span or transaction.
type SpanStatus = trace.Status

const (
	SpanStatusOK               = trace.StatusOK
	SpanStatusCancelled        = trace.StatusCancelled
	SpanStatusUnknown          = trace.StatusUnknown
	SpanStatusInternalError    = trace.StatusInternalError
	SpanStatusDeadlineExceeded = trace.StatusDeadlineExceeded
)

// UserFeedback is a user-submitted report attached to an event.
type UserFeedback struct {
	EventID  string `json:"event_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Comments string `json:"comments,omitempty"`
}

// ReportedError is an error reported by a deployed application, carrying
// its runtime type name and raw stack text.
type ReportedError struct {
	name    string
	message string
	stack   string
}

// NewReportedError wraps an application error report. Stack may be empty.
func NewReportedError(name, message, stack string) *ReportedError {
	return &ReportedError{name: name, message: message, stack: stack}
}

func (e *ReportedError) Error() string { return e.message }

// ErrorName returns the reported runtime type name, e.g. "TypeError".
func (e *ReportedError) ErrorName() string { return e.name }

// Stack returns the raw stack text as reported by the runtime.
func (e *ReportedError) Stack() string { return e.stack }
