package usecase

import (
	"testing"
	"time"

	"github.com/atlas-ai-architect/p2palertbot/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func testOrder(id string, amountSats int64, seenAt time.Time) *domain.Order {
	return &domain.Order{
		OrderID:        id,
		Kind:           domain.OrderKindSell,
		FiatCode:       "EUR",
		Status:         domain.OrderStatusPending,
		AmountSats:     amountSats,
		FiatAmount:     decimal.NewFromInt(100),
		PriceMarginPct: decimal.Zero,
		Platform:       domain.PlatformMostro,
		LastSeenAt:     seenAt,
	}
}

func TestDeduplicator_Classify(t *testing.T) {
	now := time.Now()

	t.Run("identical resend is duplicate, never a second new", func(t *testing.T) {
		d := NewDeduplicator(time.Hour, zap.NewNop())

		if got := d.Classify(testOrder("o1", 1000, now)); got != ClassNew {
			t.Fatalf("First sighting = %s, want new", got)
		}
		if got := d.Classify(testOrder("o1", 1000, now.Add(time.Second))); got != ClassDuplicate {
			t.Fatalf("Identical resend = %s, want duplicate", got)
		}
	})

	t.Run("monotonic sequencing with late stale snapshot", func(t *testing.T) {
		d := NewDeduplicator(time.Hour, zap.NewNop())

		first := testOrder("o2", 1000, now)
		second := testOrder("o2", 2000, now.Add(time.Second))
		third := testOrder("o2", 3000, now.Add(2*time.Second))

		if got := d.Classify(first); got != ClassNew {
			t.Fatalf("First = %s, want new", got)
		}
		if got := d.Classify(second); got != ClassUpdated {
			t.Fatalf("Second = %s, want updated", got)
		}
		if got := d.Classify(third); got != ClassUpdated {
			t.Fatalf("Third = %s, want updated", got)
		}
		if third.RawSequence != 3 {
			t.Errorf("Third RawSequence = %d, want 3", third.RawSequence)
		}

		// Another relay re-delivers the second snapshot after the third
		// was accepted: content conflicts with the authoritative copy.
		late := testOrder("o2", 2000, now.Add(3*time.Second))
		if got := d.Classify(late); got != ClassStaleConflict {
			t.Fatalf("Late redelivery = %s, want stale-conflict", got)
		}

		authoritative, ok := d.Authoritative("o2")
		if !ok {
			t.Fatal("Authoritative copy should exist")
		}
		if authoritative.AmountSats != 3000 || authoritative.RawSequence != 3 {
			t.Errorf("Authoritative copy was disturbed: %+v", authoritative)
		}
	})

	t.Run("sequences are independent per order id", func(t *testing.T) {
		d := NewDeduplicator(time.Hour, zap.NewNop())

		a := testOrder("a", 1000, now)
		b := testOrder("b", 1000, now)
		d.Classify(a)
		d.Classify(b)
		if a.RawSequence != 1 || b.RawSequence != 1 {
			t.Errorf("Sequences should start at 1 per id, got %d and %d", a.RawSequence, b.RawSequence)
		}
	})
}

func TestDeduplicator_Evict(t *testing.T) {
	now := time.Now()
	d := NewDeduplicator(time.Hour, zap.NewNop())

	d.Classify(testOrder("old", 1000, now.Add(-2*time.Hour)))
	d.Classify(testOrder("fresh", 1000, now))

	if evicted := d.Evict(now); evicted != 1 {
		t.Fatalf("Evict removed %d, want 1", evicted)
	}
	if _, ok := d.Authoritative("old"); ok {
		t.Error("Expired entry should be gone")
	}
	if _, ok := d.Authoritative("fresh"); !ok {
		t.Error("Fresh entry should remain")
	}

	t.Run("duplicate sighting refreshes retention", func(t *testing.T) {
		d := NewDeduplicator(time.Hour, zap.NewNop())
		d.Classify(testOrder("o", 1000, now.Add(-2*time.Hour)))
		// Re-sighted recently, even though content is unchanged.
		d.Classify(testOrder("o", 1000, now))
		if evicted := d.Evict(now); evicted != 0 {
			t.Errorf("Recently sighted entry was evicted")
		}
	})
}
