package protocol

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// SDKName identifies this SDK in outgoing events.
const SDKName = "errtrack-go"

// SDKVersion is the protocol-visible SDK version. Kept in sync with release tags.
const SDKVersion = "0.4.0"

// Level is the severity of an event or breadcrumb.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelFatal   Level = "fatal"
)

// User identifies the end user affected by an event.
type User struct {
	ID        string `json:"id,omitempty"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
}

// Breadcrumb is one entry of the trail of actions leading up to an event.
type Breadcrumb struct {
	Timestamp time.Time      `json:"timestamp"`
	Message   string         `json:"message,omitempty"`
	Category  string         `json:"category,omitempty"`
	Level     Level          `json:"level,omitempty"`
	Type      string         `json:"type,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// StackFrame is a single parsed frame of a stack trace.
type StackFrame struct {
	Filename string `json:"filename"`
	Function string `json:"function"`
	Lineno   int    `json:"lineno"`
	Colno    int    `json:"colno,omitempty"`
	AbsPath  string `json:"abs_path"`
	InApp    bool   `json:"in_app"`
}

// Stacktrace wraps the ordered frame list of one exception value.
type Stacktrace struct {
	Frames []StackFrame `json:"frames"`
}

// Mechanism describes how an exception was captured.
type Mechanism struct {
	Type    string `json:"type"`
	Handled bool   `json:"handled"`
}

// Exception is one typed exception value with its stack trace.
type Exception struct {
	Type       string      `json:"type"`
	Value      string      `json:"value"`
	Module     string      `json:"module,omitempty"`
	Mechanism  *Mechanism  `json:"mechanism,omitempty"`
	Stacktrace *Stacktrace `json:"stacktrace,omitempty"`
}

// ExceptionInfo nests exception values the way the store endpoint expects.
type ExceptionInfo struct {
	Values []Exception `json:"values"`
}

// SDKInfo names the SDK that produced an event.
type SDKInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Measurement is a named performance value recorded on a transaction.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Span is the wire form of one finished span inside a transaction event.
type Span struct {
	TraceID        string            `json:"trace_id"`
	SpanID         string            `json:"span_id"`
	ParentSpanID   string            `json:"parent_span_id,omitempty"`
	Op             string            `json:"op,omitempty"`
	Status         string            `json:"status,omitempty"`
	StartTimestamp time.Time         `json:"start_timestamp"`
	Timestamp      *time.Time        `json:"timestamp,omitempty"`
	Tags           map[string]string `json:"tags,omitempty"`
	Data           map[string]any    `json:"data,omitempty"`
}

// TraceContext is the trace block placed under contexts.trace on
// transaction events.
type TraceContext struct {
	TraceID      string `json:"trace_id"`
	SpanID       string `json:"span_id"`
	ParentSpanID string `json:"parent_span_id,omitempty"`
	Op           string `json:"op,omitempty"`
	Status       string `json:"status,omitempty"`
}

// Event is the unit of telemetry sent to the backend. Created fresh per
// capture call; treated as immutable once handed to a transport.
type Event struct {
	EventID        string                 `json:"event_id"`
	Timestamp      time.Time              `json:"timestamp"`
	StartTimestamp *time.Time             `json:"start_timestamp,omitempty"`
	Platform       string                 `json:"platform,omitempty"`
	Level          Level                  `json:"level,omitempty"`
	Type           string                 `json:"type,omitempty"`
	Message        string                 `json:"message,omitempty"`
	Transaction    string                 `json:"transaction,omitempty"`
	Exception      *ExceptionInfo         `json:"exception,omitempty"`
	Breadcrumbs    []Breadcrumb           `json:"breadcrumbs,omitempty"`
	User           *User                  `json:"user,omitempty"`
	Tags           map[string]string      `json:"tags,omitempty"`
	Extra          map[string]any         `json:"extra,omitempty"`
	Contexts       map[string]any         `json:"contexts,omitempty"`
	Spans          []Span                 `json:"spans,omitempty"`
	Measurements   map[string]Measurement `json:"measurements,omitempty"`
	SDK            SDKInfo                `json:"sdk"`
	Environment    string                 `json:"environment,omitempty"`
	Release        string                 `json:"release,omitempty"`
	ServerName     string                 `json:"server_name,omitempty"`
}

// NewEventID returns a fresh event identifier: 32 lowercase hex characters.
func NewEventID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
