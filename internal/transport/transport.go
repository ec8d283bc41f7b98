// Package transport delivers finished events to their destination. The
// client treats delivery as fire-and-forget: a transport either succeeds,
// fails, or times out, and failures are only reported back for logging.
package transport

import (
	"context"
	"os"

	"github.com/tempslabs/errtrack/internal/protocol"
)

// Transport delivers one finished event.
type Transport interface {
	SendEvent(ctx context.Context, ev *protocol.Event) error
}

// FromDSN resolves a transport for the given DSN: the console transport in
// debug mode, the HTTP transport otherwise. A malformed DSN fails here,
// fatal to SDK setup.
func FromDSN(raw string, debug bool) (Transport, error) {
	dsn, err := ParseDSN(raw)
	if err != nil {
		return nil, err
	}
	if debug {
		return NewConsole(os.Stdout), nil
	}
	return NewHTTP(dsn, 0), nil
}
