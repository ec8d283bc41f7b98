package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/tempslabs/errtrack/internal/protocol"
)

func testDSNFor(t *testing.T, serverURL string) *DSN {
	t.Helper()
	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	return &DSN{Protocol: u.Scheme, PublicKey: "testkey", Host: u.Host, ProjectID: "42"}
}

func TestHTTPSendEvent(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotBody protocol.Event

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("X-Sentry-Auth")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := NewHTTP(testDSNFor(t, srv.URL), 0)
	ev := &protocol.Event{EventID: protocol.NewEventID(), Timestamp: time.Now().UTC()}
	if err := tr.SendEvent(context.Background(), ev); err != nil {
		t.Fatalf("SendEvent: %v", err)
	}

	if gotPath != "/api/42/store/" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Sentry sentry_key=testkey, sentry_version=7" {
		t.Errorf("X-Sentry-Auth = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody.EventID != ev.EventID {
		t.Errorf("body event_id = %q, want %q", gotBody.EventID, ev.EventID)
	}
}

func TestHTTPSendEventNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := NewHTTP(testDSNFor(t, srv.URL), 0)
	err := tr.SendEvent(context.Background(), &protocol.Event{EventID: protocol.NewEventID()})
	if err == nil {
		t.Fatal("expected an error for HTTP 500")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q does not encode the status", err)
	}
}

func TestHTTPSendEventTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	tr := NewHTTP(testDSNFor(t, srv.URL), 50*time.Millisecond)
	err := tr.SendEvent(context.Background(), &protocol.Event{EventID: protocol.NewEventID()})
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if !strings.Contains(err.Error(), "request timeout after 50ms") {
		t.Errorf("error = %q, want distinct timeout message", err)
	}
}
