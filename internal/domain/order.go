package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderKind string

const (
	OrderKindBuy     OrderKind = "buy"
	OrderKindSell    OrderKind = "sell"
	OrderKindUnknown OrderKind = "unknown"
)

// ParseOrderKind maps a raw kind tag to an OrderKind. Anything outside
// buy/sell degrades to unknown rather than failing the event.
func ParseOrderKind(raw string) OrderKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "buy":
		return OrderKindBuy
	case "sell":
		return OrderKindSell
	default:
		return OrderKindUnknown
	}
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusActive    OrderStatus = "active"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusExpired   OrderStatus = "expired"
	OrderStatusUnknown   OrderStatus = "unknown"
)

func ParseOrderStatus(raw string) OrderStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return OrderStatusPending
	case "active", "in-progress":
		return OrderStatusActive
	case "canceled", "cancelled":
		return OrderStatusCanceled
	case "completed", "success":
		return OrderStatusCompleted
	case "expired":
		return OrderStatusExpired
	default:
		return OrderStatusUnknown
	}
}

type Platform string

const (
	PlatformMostro   Platform = "mostro"
	PlatformRoboSats Platform = "robosats"
	PlatformPeach    Platform = "peach"
	PlatformLNP2PBot Platform = "lnp2pbot"
	PlatformUnknown  Platform = "unknown"
)

type platformFragment struct {
	fragment string
	platform Platform
}

// Ordered first-match-wins list. Ambiguous source URLs must resolve
// deterministically, so the order here is part of the contract.
var platformFragments = []platformFragment{
	{"mostro", PlatformMostro},
	{"robosats", PlatformRoboSats},
	{"peach", PlatformPeach},
	{"lnp2pbot", PlatformLNP2PBot},
	{"t.me/p2plightning", PlatformLNP2PBot},
}

// DetectPlatform derives the originating platform from an order's source
// URL by ordered substring match. No match yields PlatformUnknown.
func DetectPlatform(sourceURL string) Platform {
	lowered := strings.ToLower(sourceURL)
	for _, entry := range platformFragments {
		if strings.Contains(lowered, entry.fragment) {
			return entry.platform
		}
	}
	return PlatformUnknown
}

// Order is the canonical record for one P2P order broadcast. For a given
// OrderID only the copy with the highest RawSequence is authoritative.
type Order struct {
	OrderID        string
	Kind           OrderKind
	FiatCode       string
	Status         OrderStatus
	AmountSats     int64
	FiatAmount     decimal.Decimal
	PaymentMethod  string
	PriceMarginPct decimal.Decimal
	SourceURL      string
	Platform       Platform
	LastSeenAt     time.Time
	RawSequence    uint64
}

// ContentEqual reports whether two snapshots carry the same order content,
// ignoring bookkeeping fields (LastSeenAt, RawSequence).
func (o Order) ContentEqual(other Order) bool {
	return o.OrderID == other.OrderID &&
		o.Kind == other.Kind &&
		o.FiatCode == other.FiatCode &&
		o.Status == other.Status &&
		o.AmountSats == other.AmountSats &&
		o.FiatAmount.Equal(other.FiatAmount) &&
		o.PaymentMethod == other.PaymentMethod &&
		o.PriceMarginPct.Equal(other.PriceMarginPct) &&
		o.SourceURL == other.SourceURL &&
		o.Platform == other.Platform
}
