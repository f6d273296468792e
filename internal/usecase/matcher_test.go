package usecase

import (
	"testing"

	"github.com/atlas-ai-architect/p2palertbot/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestMatchAlerts(t *testing.T) {
	order := domain.Order{
		OrderID:        "o1",
		Kind:           domain.OrderKindSell,
		FiatCode:       "EUR",
		AmountSats:     100000,
		FiatAmount:     decimal.NewFromInt(5000),
		PaymentMethod:  "SEPA",
		PriceMarginPct: decimal.NewFromFloat(3.5),
		Platform:       domain.PlatformMostro,
	}

	t.Run("conjunction filters mismatches", func(t *testing.T) {
		candidates := []domain.Alert{
			{ID: 1, UserID: 10, Kind: domain.OrderKindSell, FiatCode: "EUR"},
			{ID: 2, UserID: 11, Kind: domain.OrderKindBuy, FiatCode: "EUR"},
			{ID: 3, UserID: 12, PaymentMethod: "sepa"},
		}
		matched := MatchAlerts(order, candidates, zap.NewNop())
		if len(matched) != 2 {
			t.Fatalf("Matched %d alerts, want 2", len(matched))
		}
		if matched[0].ID != 1 || matched[1].ID != 3 {
			t.Errorf("Matched ids %d,%d, want 1,3", matched[0].ID, matched[1].ID)
		}
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		candidates := []domain.Alert{
			{ID: 1, Kind: domain.OrderKindSell},
			{ID: 2},
			{ID: 3, FiatCode: "EUR"},
		}
		first := MatchAlerts(order, candidates, zap.NewNop())
		second := MatchAlerts(order, candidates, zap.NewNop())
		if len(first) != len(second) {
			t.Fatalf("Non-deterministic match count: %d vs %d", len(first), len(second))
		}
		for i := range first {
			if first[i].ID != second[i].ID {
				t.Fatalf("Non-deterministic order at %d", i)
			}
		}
	})

	t.Run("no candidates yields no matches", func(t *testing.T) {
		if matched := MatchAlerts(order, nil, zap.NewNop()); len(matched) != 0 {
			t.Errorf("Expected no matches, got %d", len(matched))
		}
	})
}
