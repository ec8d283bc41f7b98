package scope

import (
	"testing"

	"github.com/tempslabs/errtrack/internal/protocol"
)

func TestPushScopeInheritsState(t *testing.T) {
	h := NewHub(10)
	h.SetTag("base", "yes")

	pushed := h.PushScope()
	ev := pushed.ApplyToEvent(&protocol.Event{})
	if ev.Tags["base"] != "yes" {
		t.Error("pushed scope did not inherit parent state")
	}
}

func TestPopScopeRootIsNoOp(t *testing.T) {
	h := NewHub(10)
	root := h.Scope()
	h.PopScope()
	h.PopScope()
	if h.Scope() != root {
		t.Error("root scope must never be popped")
	}
}

func TestWithScopeMutationsInvisibleAfter(t *testing.T) {
	h := NewHub(10)
	h.WithScope(func(s *Scope) {
		s.SetTag("temporary", "true")
	})

	ev := h.ApplyToEvent(&protocol.Event{}, nil)
	if _, ok := ev.Tags["temporary"]; ok {
		t.Error("tag set inside WithScope leaked out")
	}
}

func TestWithScopePopsOnPanic(t *testing.T) {
	h := NewHub(10)
	func() {
		defer func() { _ = recover() }()
		h.WithScope(func(s *Scope) {
			s.SetTag("leaky", "true")
			panic("boom")
		})
	}()

	ev := h.ApplyToEvent(&protocol.Event{}, nil)
	if _, ok := ev.Tags["leaky"]; ok {
		t.Error("scope not popped after panic inside WithScope")
	}
}

func TestConfigureScopeIsPermanent(t *testing.T) {
	h := NewHub(10)
	h.ConfigureScope(func(s *Scope) {
		s.SetTag("permanent", "true")
	})

	ev := h.ApplyToEvent(&protocol.Event{}, nil)
	if ev.Tags["permanent"] != "true" {
		t.Error("ConfigureScope mutation lost")
	}
}

func TestApplyToEventFoldsWholeStack(t *testing.T) {
	h := NewHub(10)
	h.SetTag("global", "g")
	h.PushScope()
	h.SetTag("inner", "i")

	ev := h.ApplyToEvent(&protocol.Event{}, nil)
	if ev.Tags["global"] != "g" || ev.Tags["inner"] != "i" {
		t.Errorf("Tags = %v, want both scopes folded", ev.Tags)
	}
}

func TestCaptureContextFieldsApplied(t *testing.T) {
	h := NewHub(10)
	cc := &CaptureContext{
		User:  &protocol.User{ID: "cc-user"},
		Tags:  map[string]string{"once": "true"},
		Extra: map[string]any{"payload": 42},
	}

	ev := h.ApplyToEvent(&protocol.Event{}, cc)
	if ev.User == nil || ev.User.ID != "cc-user" {
		t.Errorf("User = %+v", ev.User)
	}
	if ev.Tags["once"] != "true" {
		t.Errorf("Tags = %v", ev.Tags)
	}
	if ev.Extra["payload"] != 42 {
		t.Errorf("Extra = %v", ev.Extra)
	}
}

func TestCaptureContextDoesNotMutateScope(t *testing.T) {
	h := NewHub(10)
	h.ApplyToEvent(&protocol.Event{}, &CaptureContext{
		Tags: map[string]string{"oneoff": "true"},
	})

	ev := h.ApplyToEvent(&protocol.Event{}, nil)
	if _, ok := ev.Tags["oneoff"]; ok {
		t.Error("capture context leaked into the persistent scope")
	}
}

func TestCaptureContextLevelForcesOverride(t *testing.T) {
	h := NewHub(10)
	ev := &protocol.Event{Level: protocol.LevelInfo}
	h.ApplyToEvent(ev, &CaptureContext{Level: protocol.LevelFatal})

	if ev.Level != protocol.LevelFatal {
		t.Errorf("Level = %q, explicit capture-context level must win", ev.Level)
	}
}

func TestCaptureContextMutateForm(t *testing.T) {
	h := NewHub(10)
	ev := h.ApplyToEvent(&protocol.Event{}, &CaptureContext{
		Mutate: func(s *Scope) {
			s.SetTag("mutated", "true")
		},
	})

	if ev.Tags["mutated"] != "true" {
		t.Errorf("Tags = %v, want mutate-form tag applied", ev.Tags)
	}

	after := h.ApplyToEvent(&protocol.Event{}, nil)
	if _, ok := after.Tags["mutated"]; ok {
		t.Error("mutate form leaked into the persistent scope")
	}
}
