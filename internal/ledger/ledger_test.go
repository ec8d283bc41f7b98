package ledger

import (
	"path/filepath"
	"testing"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	led, err := Open(filepath.Join(t.TempDir(), "deliveries.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { led.Close() })
	return led
}

func TestMarkAndLookup(t *testing.T) {
	led := openTestLedger(t)

	seen, err := led.Delivered("ev-1")
	if err != nil {
		t.Fatalf("Delivered: %v", err)
	}
	if seen {
		t.Error("unknown event id reported as delivered")
	}

	if err := led.MarkDelivered("ev-1", "https://errors.internal/api/1/store/"); err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}

	seen, err = led.Delivered("ev-1")
	if err != nil {
		t.Fatalf("Delivered: %v", err)
	}
	if !seen {
		t.Error("marked event id not reported as delivered")
	}
}

func TestMarkDeliveredTwiceIsNoOp(t *testing.T) {
	led := openTestLedger(t)
	if err := led.MarkDelivered("ev-dup", "t"); err != nil {
		t.Fatalf("first MarkDelivered: %v", err)
	}
	if err := led.MarkDelivered("ev-dup", "t"); err != nil {
		t.Fatalf("second MarkDelivered: %v", err)
	}

	recent, err := led.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("expected 1 delivery, got %d", len(recent))
	}
}

func TestRecentLimit(t *testing.T) {
	led := openTestLedger(t)
	for _, id := range []string{"a", "b", "c", "d"} {
		if err := led.MarkDelivered(id, "t"); err != nil {
			t.Fatalf("MarkDelivered(%s): %v", id, err)
		}
	}

	recent, err := led.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("expected 2 deliveries, got %d", len(recent))
	}
	for _, d := range recent {
		if d.DeliveredAt.IsZero() {
			t.Error("delivery timestamp not recorded")
		}
	}
}
