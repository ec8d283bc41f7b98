package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tempslabs/errtrack/internal/protocol"
)

// DefaultTimeout bounds one store request end to end.
const DefaultTimeout = 30 * time.Second

// HTTPTransport POSTs serialized events to the DSN's store endpoint.
type HTTPTransport struct {
	dsn     *DSN
	client  *http.Client
	timeout time.Duration
}

// NewHTTP creates an HTTP transport for the given DSN. A zero timeout
// selects DefaultTimeout.
func NewHTTP(dsn *DSN, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPTransport{
		dsn:     dsn,
		client:  &http.Client{},
		timeout: timeout,
	}
}

// SendEvent POSTs the event with the configured timeout. A timeout rejects
// with a distinct message; other network failures propagate unchanged; a
// non-2xx response reports the numeric status and status text.
func (t *HTTPTransport) SendEvent(ctx context.Context, ev *protocol.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, t.dsn.StoreURL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Sentry-Auth", t.dsn.AuthHeader())

	resp, err := t.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("request timeout after %dms", t.timeout.Milliseconds())
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("store endpoint returned HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return nil
}
