package stacktrace

import (
	"encoding/json"
	"fmt"

	"github.com/tempslabs/errtrack/internal/protocol"
)

// stackCarrier is implemented by errors that retain raw stack text.
type stackCarrier interface {
	Stack() string
}

// namedError is implemented by errors with an explicit type name.
type namedError interface {
	ErrorName() string
}

// FromError builds an exception value from an error. The handled/unhandled
// distinction is applied by the client via tags, not here.
func FromError(err error) protocol.Exception {
	name := "Error"
	if n, ok := err.(namedError); ok && n.ErrorName() != "" {
		name = n.ErrorName()
	}

	frames := []protocol.StackFrame{}
	if c, ok := err.(stackCarrier); ok {
		frames = Parse(c.Stack())
	}

	return protocol.Exception{
		Type:       name,
		Value:      err.Error(),
		Mechanism:  &protocol.Mechanism{Type: "generic", Handled: true},
		Stacktrace: &protocol.Stacktrace{Frames: frames},
	}
}

// IsError reports whether a captured value should be treated as an error:
// either a Go error, or a generic payload carrying both message and stack.
func IsError(v any) bool {
	if _, ok := v.(error); ok {
		return true
	}
	if m, ok := v.(map[string]any); ok {
		_, hasMessage := m["message"]
		_, hasStack := m["stack"]
		return hasMessage && hasStack
	}
	return false
}

// ExtractMessage derives a human-readable message from an arbitrary captured
// value. Never panics, whatever the payload.
func ExtractMessage(v any) string {
	if v == nil {
		return "null"
	}
	if err, ok := v.(error); ok {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return "Unknown error"
	}
	if s, ok := v.(string); ok {
		return s
	}
	if m, ok := v.(map[string]any); ok {
		if msg, ok := m["message"]; ok {
			return fmt.Sprintf("%v", msg)
		}
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	// Cyclic or unsupported values fall back to fmt's rendering.
	return fmt.Sprintf("%v", v)
}
