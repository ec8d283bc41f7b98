package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tempslabs/errtrack/internal/protocol"
)

// ConsoleTransport pretty-prints events instead of delivering them.
// Used in debug mode. Never fails.
type ConsoleTransport struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a console transport writing to w, or standard out
// when w is nil.
func NewConsole(w io.Writer) *ConsoleTransport {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleTransport{w: w}
}

// SendEvent logs the event as indented JSON.
func (t *ConsoleTransport) SendEvent(_ context.Context, ev *protocol.Event) error {
	b, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		b = []byte(fmt.Sprintf("%+v", ev))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "[ErrorTracking] %s\n", b)
	return nil
}
