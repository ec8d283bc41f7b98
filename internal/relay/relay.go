// Package relay forwards spooled events to the store endpoint. It watches
// the spool directory and drains it whenever new files land, deduplicating
// by event id through the delivery ledger.
package relay

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tempslabs/errtrack/internal/ledger"
	"github.com/tempslabs/errtrack/internal/spool"
	"github.com/tempslabs/errtrack/internal/transport"
)

// debounceDefault is how long the relay waits after the last file event
// before sweeping, so bursts of spooled files are drained in one pass.
const debounceDefault = 500 * time.Millisecond

// Relay drains a spool directory into a transport.
type Relay struct {
	spool     *spool.Spool
	transport transport.Transport
	ledger    *ledger.Ledger
	target    string
	debounce  time.Duration
}

// New creates a relay forwarding from sp through tr, recording deliveries
// in led. Target names the destination for ledger entries.
func New(sp *spool.Spool, tr transport.Transport, led *ledger.Ledger, target string) *Relay {
	return &Relay{
		spool:     sp,
		transport: tr,
		ledger:    led,
		target:    target,
		debounce:  debounceDefault,
	}
}

// Sweep forwards every spooled event once. Files that fail to decode are
// skipped; files whose event id was already delivered are removed without
// sending; delivery failures keep the file for a later sweep. Returns the
// number of events forwarded.
func (r *Relay) Sweep(ctx context.Context) (int, error) {
	paths, err := r.spool.List()
	if err != nil {
		return 0, fmt.Errorf("list spool: %w", err)
	}

	forwarded := 0
	for _, path := range paths {
		if ctx.Err() != nil {
			return forwarded, ctx.Err()
		}

		ev, err := r.spool.Read(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "relay: skipping %s: %v\n", path, err)
			continue
		}

		seen, err := r.ledger.Delivered(ev.EventID)
		if err != nil {
			return forwarded, fmt.Errorf("ledger lookup: %w", err)
		}
		if seen {
			_ = r.spool.Remove(path)
			continue
		}

		if err := r.transport.SendEvent(ctx, ev); err != nil {
			fmt.Fprintf(os.Stderr, "relay: delivery failed for %s: %v\n", ev.EventID, err)
			continue
		}

		if err := r.ledger.MarkDelivered(ev.EventID, r.target); err != nil {
			return forwarded, err
		}
		_ = r.spool.Remove(path)
		forwarded++
	}
	return forwarded, nil
}

// Run sweeps once, then watches the spool directory and re-sweeps after
// each burst of new files. Blocks until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	if err := os.MkdirAll(r.spool.Dir(), 0750); err != nil {
		return fmt.Errorf("create spool dir: %w", err)
	}
	if _, err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "relay: initial sweep: %v\n", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(r.spool.Dir()); err != nil {
		return fmt.Errorf("watch %q: %w", r.spool.Dir(), err)
	}

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(r.debounce, func() {
					if _, err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
						fmt.Fprintf(os.Stderr, "relay: sweep: %v\n", err)
					}
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "relay: watcher error: %v\n", err)
		}
	}
}
