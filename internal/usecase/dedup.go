package usecase

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/atlas-ai-architect/p2palertbot/internal/domain"
	"go.uber.org/zap"
)

type Classification int

const (
	ClassNew Classification = iota
	ClassUpdated
	ClassDuplicate
	ClassStaleConflict
)

func (c Classification) String() string {
	switch c {
	case ClassNew:
		return "new"
	case ClassUpdated:
		return "updated"
	case ClassDuplicate:
		return "duplicate"
	case ClassStaleConflict:
		return "stale-conflict"
	default:
		return "unknown"
	}
}

type dedupEntry struct {
	order       domain.Order
	fingerprint [32]byte
	seen        map[[32]byte]struct{}
	lastSeen    time.Time
}

// Deduplicator classifies each normalized order snapshot against the
// authoritative copy it holds for that order id. It assigns RawSequence
// itself: relays carry no reliable sequence number, so recency is arrival
// order at this component ("last accepted write wins").
type Deduplicator struct {
	retention time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	entries map[string]*dedupEntry
}

func NewDeduplicator(retention time.Duration, logger *zap.Logger) *Deduplicator {
	return &Deduplicator{
		retention: retention,
		logger:    logger,
		entries:   make(map[string]*dedupEntry),
	}
}

// Classify decides NEW, UPDATED, DUPLICATE or STALE-CONFLICT for the
// snapshot and, on acceptance, stores it as the authoritative copy with
// the next RawSequence. The lock covers only the classify-and-update step,
// never any I/O.
func (d *Deduplicator) Classify(order *domain.Order) Classification {
	fp := fingerprint(*order)

	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.entries[order.OrderID]
	if !ok {
		order.RawSequence = 1
		d.entries[order.OrderID] = &dedupEntry{
			order:       *order,
			fingerprint: fp,
			seen:        map[[32]byte]struct{}{fp: {}},
			lastSeen:    order.LastSeenAt,
		}
		return ClassNew
	}

	entry.lastSeen = order.LastSeenAt

	if fp == entry.fingerprint {
		return ClassDuplicate
	}
	if _, superseded := entry.seen[fp]; superseded {
		// Expected when relays race to deliver older snapshots of the
		// same order; the authoritative copy wins.
		d.logger.Debug("stale order snapshot discarded",
			zap.String("order_id", order.OrderID),
			zap.Uint64("authoritative_seq", entry.order.RawSequence),
		)
		return ClassStaleConflict
	}

	order.RawSequence = entry.order.RawSequence + 1
	entry.order = *order
	entry.fingerprint = fp
	entry.seen[fp] = struct{}{}
	return ClassUpdated
}

// Authoritative returns the current authoritative snapshot for an order
// id, if any. Used by the health surface and tests.
func (d *Deduplicator) Authoritative(orderID string) (domain.Order, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.entries[orderID]
	if !ok {
		return domain.Order{}, false
	}
	return entry.order, true
}

// Size reports how many order identities are cached.
func (d *Deduplicator) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Evict drops entries not sighted within the retention window and returns
// how many were removed.
func (d *Deduplicator) Evict(now time.Time) int {
	cutoff := now.Add(-d.retention)

	d.mu.Lock()
	defer d.mu.Unlock()

	evicted := 0
	for id, entry := range d.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(d.entries, id)
			evicted++
		}
	}
	return evicted
}

// fingerprint digests the comparable order content, excluding bookkeeping
// fields, so re-delivered superseded snapshots are recognizable.
func fingerprint(order domain.Order) [32]byte {
	canonical := fmt.Sprintf("%s|%s|%s|%s|%d|%s|%s|%s|%s|%s",
		order.OrderID,
		order.Kind,
		order.FiatCode,
		order.Status,
		order.AmountSats,
		order.FiatAmount.String(),
		order.PaymentMethod,
		order.PriceMarginPct.String(),
		order.SourceURL,
		order.Platform,
	)
	return sha256.Sum256([]byte(canonical))
}
