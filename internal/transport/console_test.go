package transport

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/tempslabs/errtrack/internal/protocol"
)

func TestConsoleSendEvent(t *testing.T) {
	var buf bytes.Buffer
	tr := NewConsole(&buf)

	ev := &protocol.Event{EventID: protocol.NewEventID(), Message: "hello"}
	if err := tr.SendEvent(context.Background(), ev); err != nil {
		t.Fatalf("SendEvent: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "[ErrorTracking] ") {
		t.Errorf("output missing prefix: %q", out)
	}
	if !strings.Contains(out, ev.EventID) {
		t.Error("output missing event id")
	}
	if !strings.Contains(out, `"message": "hello"`) {
		t.Errorf("output not pretty-printed JSON: %q", out)
	}
}

func TestFromDSNSelection(t *testing.T) {
	tr, err := FromDSN("https://key@host/1", true)
	if err != nil {
		t.Fatalf("FromDSN: %v", err)
	}
	if _, ok := tr.(*ConsoleTransport); !ok {
		t.Errorf("debug transport = %T, want ConsoleTransport", tr)
	}

	tr, err = FromDSN("https://key@host/1", false)
	if err != nil {
		t.Fatalf("FromDSN: %v", err)
	}
	if _, ok := tr.(*HTTPTransport); !ok {
		t.Errorf("transport = %T, want HTTPTransport", tr)
	}

	if _, err := FromDSN("invalid-dsn", false); err == nil {
		t.Error("expected an error for a malformed DSN")
	}
}
