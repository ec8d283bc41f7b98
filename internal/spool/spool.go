// Package spool persists events as JSON files in a directory, for hosts
// that cannot (or should not) deliver directly. A relay forwards spooled
// files later; the capturing client itself never retries.
package spool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tempslabs/errtrack/internal/protocol"
)

// Spool writes and reads spooled event files. One file per event, named by
// event id.
type Spool struct {
	dir string
}

// New creates a spool rooted at dir. The directory is created on first write.
func New(dir string) *Spool {
	return &Spool{dir: dir}
}

// Dir returns the spool directory path.
func (s *Spool) Dir() string {
	return s.dir
}

// Write persists one event to the spool directory.
// Uses atomic write (tmp + rename) to prevent partial reads.
func (s *Spool) Write(ev *protocol.Event) error {
	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return fmt.Errorf("create spool dir: %w", err)
	}

	data, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	filename := ev.EventID + ".json"
	tmpPath := filepath.Join(s.dir, filename+".tmp")
	finalPath := filepath.Join(s.dir, filename)

	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	return os.Rename(tmpPath, finalPath)
}

// SendEvent implements the transport contract by spooling the event.
func (s *Spool) SendEvent(_ context.Context, ev *protocol.Event) error {
	return s.Write(ev)
}

// List returns the paths of all spooled event files.
// Returns nil (not error) if the directory does not exist.
func (s *Spool) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".tmp") {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, name))
	}
	return paths, nil
}

// Read loads one spooled event.
func (s *Spool) Read(path string) (*protocol.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ev protocol.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &ev, nil
}

// Remove deletes a forwarded event file.
func (s *Spool) Remove(path string) error {
	return os.Remove(path)
}
