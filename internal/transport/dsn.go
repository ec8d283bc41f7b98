package transport

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidDSN is returned when a DSN string fails the expected grammar.
var ErrInvalidDSN = errors.New("invalid DSN format")

// dsnRe matches <protocol>://<publicKey>@<host>/<projectId>. The host may
// carry a :port suffix and is preserved verbatim.
var dsnRe = regexp.MustCompile(`^(https?)://([^@/]+)@([^/]+)/([^/]+)$`)

// DSN is a parsed data source name pointing at one project's store endpoint.
type DSN struct {
	Protocol  string
	PublicKey string
	Host      string
	ProjectID string
}

// ParseDSN parses a DSN string, failing fast on malformed input.
func ParseDSN(raw string) (*DSN, error) {
	m := dsnRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDSN, raw)
	}
	return &DSN{
		Protocol:  m[1],
		PublicKey: m[2],
		Host:      m[3],
		ProjectID: m[4],
	}, nil
}

// StoreURL returns the event ingestion endpoint for this DSN.
func (d *DSN) StoreURL() string {
	return fmt.Sprintf("%s://%s/api/%s/store/", d.Protocol, d.Host, d.ProjectID)
}

// AuthHeader returns the X-Sentry-Auth header value for this DSN.
func (d *DSN) AuthHeader() string {
	return fmt.Sprintf("Sentry sentry_key=%s, sentry_version=7", d.PublicKey)
}
