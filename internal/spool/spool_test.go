package spool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tempslabs/errtrack/internal/protocol"
)

func TestWriteReadRoundTrip(t *testing.T) {
	sp := New(filepath.Join(t.TempDir(), "spool"))

	ev := &protocol.Event{
		EventID: protocol.NewEventID(),
		Message: "spooled",
		Level:   protocol.LevelWarning,
	}
	if err := sp.Write(ev); err != nil {
		t.Fatalf("Write: %v", err)
	}

	paths, err := sp.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 spooled file, got %d", len(paths))
	}

	got, err := sp.Read(paths[0])
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.EventID != ev.EventID {
		t.Errorf("EventID = %q", got.EventID)
	}
	if got.Message != "spooled" || got.Level != protocol.LevelWarning {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestListMissingDir(t *testing.T) {
	sp := New("/nonexistent/spool/path")
	paths, err := sp.List()
	if err != nil {
		t.Fatalf("expected nil error for missing dir, got %v", err)
	}
	if paths != nil {
		t.Errorf("expected nil paths, got %d", len(paths))
	}
}

func TestWriteNoTmpLeftover(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "spool")
	sp := New(dir)
	if err := sp.Write(&protocol.Event{EventID: protocol.NewEventID()}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	files, _ := os.ReadDir(dir)
	for _, f := range files {
		if filepath.Ext(f.Name()) != ".json" {
			t.Errorf("unexpected file in spool dir: %s", f.Name())
		}
	}
}

func TestRemove(t *testing.T) {
	sp := New(filepath.Join(t.TempDir(), "spool"))
	if err := sp.Write(&protocol.Event{EventID: protocol.NewEventID()}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	paths, _ := sp.List()
	if err := sp.Remove(paths[0]); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	paths, _ = sp.List()
	if len(paths) != 0 {
		t.Errorf("expected empty spool after remove, got %d", len(paths))
	}
}

func TestSendEventSpools(t *testing.T) {
	sp := New(filepath.Join(t.TempDir(), "spool"))
	if err := sp.SendEvent(context.Background(), &protocol.Event{EventID: protocol.NewEventID()}); err != nil {
		t.Fatalf("SendEvent: %v", err)
	}
	paths, _ := sp.List()
	if len(paths) != 1 {
		t.Errorf("expected 1 spooled file, got %d", len(paths))
	}
}
