package stacktrace

import (
	"errors"
	"testing"
)

// reportedErr mimics an application error report carrying name and stack.
type reportedErr struct {
	name  string
	msg   string
	stack string
}

func (e reportedErr) Error() string     { return e.msg }
func (e reportedErr) ErrorName() string { return e.name }
func (e reportedErr) Stack() string     { return e.stack }

type emptyErr struct{}

func (emptyErr) Error() string { return "" }

func TestFromError(t *testing.T) {
	err := reportedErr{
		name:  "TypeError",
		msg:   "x is not a function",
		stack: "TypeError: x is not a function\n    at run (/app/main.js:3:7)",
	}

	exc := FromError(err)
	if exc.Type != "TypeError" {
		t.Errorf("Type = %q, want TypeError", exc.Type)
	}
	if exc.Value != "x is not a function" {
		t.Errorf("Value = %q", exc.Value)
	}
	if exc.Mechanism == nil || exc.Mechanism.Type != "generic" || !exc.Mechanism.Handled {
		t.Errorf("Mechanism = %+v, want generic/handled", exc.Mechanism)
	}
	if exc.Stacktrace == nil || len(exc.Stacktrace.Frames) != 1 {
		t.Fatalf("Stacktrace = %+v, want 1 frame", exc.Stacktrace)
	}
	if exc.Stacktrace.Frames[0].Function != "run" {
		t.Errorf("frame Function = %q", exc.Stacktrace.Frames[0].Function)
	}
}

func TestFromErrorWithoutStack(t *testing.T) {
	exc := FromError(errors.New("plain failure"))
	if exc.Type != "Error" {
		t.Errorf("Type = %q, want Error", exc.Type)
	}
	if exc.Stacktrace == nil {
		t.Fatal("Stacktrace is nil, want empty frame list")
	}
	if len(exc.Stacktrace.Frames) != 0 {
		t.Errorf("expected 0 frames, got %d", len(exc.Stacktrace.Frames))
	}
}

func TestIsError(t *testing.T) {
	cases := []struct {
		name string
		v    any
		want bool
	}{
		{"go error", errors.New("x"), true},
		{"report with message and stack", map[string]any{"message": "m", "stack": "s"}, true},
		{"message only", map[string]any{"message": "m"}, false},
		{"stack only", map[string]any{"stack": "s"}, false},
		{"string", "oops", false},
		{"nil", nil, false},
		{"number", 7, false},
	}
	for _, tc := range cases {
		if got := IsError(tc.v); got != tc.want {
			t.Errorf("%s: IsError = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestExtractMessage(t *testing.T) {
	cases := []struct {
		name string
		v    any
		want string
	}{
		{"error", errors.New("disk full"), "disk full"},
		{"empty error", emptyErr{}, "Unknown error"},
		{"string", "just text", "just text"},
		{"map with message", map[string]any{"message": "from map"}, "from map"},
		{"nil", nil, "null"},
		{"json value", map[string]any{"code": "E42"}, `{"code":"E42"}`},
	}
	for _, tc := range cases {
		if got := ExtractMessage(tc.v); got != tc.want {
			t.Errorf("%s: ExtractMessage = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestExtractMessageUnmarshalableValue(t *testing.T) {
	// Channels cannot be JSON-marshaled; extraction must not panic.
	got := ExtractMessage(make(chan int))
	if got == "" {
		t.Error("expected a non-empty fallback message")
	}
}
