package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Alert is a user-owned conjunction of optional filter predicates. An
// unset predicate matches implicitly; an alert with every predicate unset
// matches every order.
type Alert struct {
	ID                uint
	UserID            uint
	Kind              OrderKind // empty = any
	FiatCode          string    // empty = any
	MinAmountSats     *int64
	MaxAmountSats     *int64
	MinPriceMarginPct *decimal.Decimal
	MaxPriceMarginPct *decimal.Decimal
	PaymentMethod     string // case-insensitive substring, empty = any
	Platforms         []Platform
	Enabled           bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

// Matches evaluates every set predicate as a conjunction against the
// order. Numeric range predicates are inclusive on both bounds.
func (a Alert) Matches(order Order) bool {
	if a.Kind != "" && a.Kind != order.Kind {
		return false
	}
	if a.FiatCode != "" && !strings.EqualFold(a.FiatCode, order.FiatCode) {
		return false
	}
	if a.MinAmountSats != nil && order.AmountSats < *a.MinAmountSats {
		return false
	}
	if a.MaxAmountSats != nil && order.AmountSats > *a.MaxAmountSats {
		return false
	}
	if a.MinPriceMarginPct != nil && order.PriceMarginPct.LessThan(*a.MinPriceMarginPct) {
		return false
	}
	if a.MaxPriceMarginPct != nil && order.PriceMarginPct.GreaterThan(*a.MaxPriceMarginPct) {
		return false
	}
	if a.PaymentMethod != "" && !strings.Contains(strings.ToLower(order.PaymentMethod), strings.ToLower(a.PaymentMethod)) {
		return false
	}
	if len(a.Platforms) > 0 {
		found := false
		for _, p := range a.Platforms {
			if p == order.Platform {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// IsCatchAll reports whether no predicate is set at all. Allowed, but
// surfaced on a warning path by the matcher.
func (a Alert) IsCatchAll() bool {
	return a.Kind == "" &&
		a.FiatCode == "" &&
		a.MinAmountSats == nil &&
		a.MaxAmountSats == nil &&
		a.MinPriceMarginPct == nil &&
		a.MaxPriceMarginPct == nil &&
		a.PaymentMethod == "" &&
		len(a.Platforms) == 0
}
