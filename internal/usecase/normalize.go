package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atlas-ai-architect/p2palertbot/internal/domain"
	"github.com/shopspring/decimal"
)

// RejectError explains why an event could not be normalized into an order.
// Only a wrong event kind rejects; every other malformation degrades to a
// documented field default.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string { return "event rejected: " + e.Reason }

// NormalizeEvent maps one raw relay event to a canonical Order. Each field
// mapping is total: a missing or unparseable tag yields that field's
// default, never a failure.
func NormalizeEvent(event domain.OrderEvent, now time.Time) (*domain.Order, error) {
	if event.Kind != domain.OrderEventKind {
		return nil, &RejectError{Reason: fmt.Sprintf("unexpected event kind %d", event.Kind)}
	}

	orderID, ok := event.Tag("d")
	if !ok || strings.TrimSpace(orderID) == "" {
		orderID = event.ID
	}

	sourceURL, _ := event.Tag("source")

	order := &domain.Order{
		OrderID:        orderID,
		Kind:           domain.ParseOrderKind(tagOrDefault(event, "k", "")),
		FiatCode:       tagOrDefault(event, "f", "unknown"),
		Status:         domain.ParseOrderStatus(tagOrDefault(event, "s", "")),
		AmountSats:     parseSats(event, "amt"),
		FiatAmount:     nonNegative(parseDecimalTag(event, "fa")),
		PaymentMethod:  tagOrDefault(event, "pm", ""),
		PriceMarginPct: parseDecimalTag(event, "premium"),
		SourceURL:      sourceURL,
		Platform:       domain.DetectPlatform(sourceURL),
		LastSeenAt:     now,
	}
	return order, nil
}

func tagOrDefault(event domain.OrderEvent, name, fallback string) string {
	if value, ok := event.Tag(name); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseSats(event domain.OrderEvent, name string) int64 {
	raw, ok := event.Tag(name)
	if !ok {
		return 0
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func nonNegative(value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return decimal.Zero
	}
	return value
}

func parseDecimalTag(event domain.OrderEvent, name string) decimal.Decimal {
	raw, ok := event.Tag(name)
	if !ok {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return value
}
