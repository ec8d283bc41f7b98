// Package errtrack is the Go client for the temps error-tracking backend.
// It captures exceptions and messages, enriches them with contextual state
// (user, tags, breadcrumbs), batches them through a pluggable transport,
// and supports lightweight distributed tracing via transactions and spans.
//
// Usage:
//
//	client, err := errtrack.New("https://abc123@errors.temps.sh/42",
//	    errtrack.WithEnvironment("staging"),
//	    errtrack.WithRelease("1.4.2"),
//	)
//	client.AddBreadcrumb(errtrack.Breadcrumb{Category: "auth", Message: "login ok"})
//	client.CaptureException(err, nil)
//
// Delivery is best-effort by design: captures never block, never throw, and
// never crash the host application. The SDK links directly against internal
// packages; external users import github.com/tempslabs/errtrack/sdk/go/errtrack.
package errtrack
