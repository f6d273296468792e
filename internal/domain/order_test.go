package domain

import "testing"

func TestDetectPlatform(t *testing.T) {
	t.Run("known fragments", func(t *testing.T) {
		cases := map[string]Platform{
			"https://mostro.network/order/abc123":      PlatformMostro,
			"http://robosats.com/order/55":             PlatformRoboSats,
			"https://peachbitcoin.com/offer/9":         PlatformPeach,
			"https://lnp2pbot.com/order/1":             PlatformLNP2PBot,
			"https://t.me/p2plightningbot?start=order": PlatformLNP2PBot,
		}
		for url, want := range cases {
			if got := DetectPlatform(url); got != want {
				t.Errorf("DetectPlatform(%q) = %s, want %s", url, got, want)
			}
		}
	})

	t.Run("no match yields unknown", func(t *testing.T) {
		if got := DetectPlatform("https://example.com/order/1"); got != PlatformUnknown {
			t.Errorf("Expected unknown, got %s", got)
		}
	})

	t.Run("empty source yields unknown", func(t *testing.T) {
		if got := DetectPlatform(""); got != PlatformUnknown {
			t.Errorf("Expected unknown, got %s", got)
		}
	})

	t.Run("first match wins on ambiguous url", func(t *testing.T) {
		// Contains both "mostro" and "robosats"; the list order decides.
		if got := DetectPlatform("https://mostro.network/mirror/robosats"); got != PlatformMostro {
			t.Errorf("Expected mostro, got %s", got)
		}
	})

	t.Run("match is case-insensitive", func(t *testing.T) {
		if got := DetectPlatform("https://RoboSats.com/order/1"); got != PlatformRoboSats {
			t.Errorf("Expected robosats, got %s", got)
		}
	})
}

func TestParseOrderKind(t *testing.T) {
	cases := map[string]OrderKind{
		"buy":   OrderKindBuy,
		"sell":  OrderKindSell,
		"SELL":  OrderKindSell,
		" buy ": OrderKindBuy,
		"swap":  OrderKindUnknown,
		"":      OrderKindUnknown,
	}
	for raw, want := range cases {
		if got := ParseOrderKind(raw); got != want {
			t.Errorf("ParseOrderKind(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	cases := map[string]OrderStatus{
		"pending":     OrderStatusPending,
		"active":      OrderStatusActive,
		"in-progress": OrderStatusActive,
		"canceled":    OrderStatusCanceled,
		"cancelled":   OrderStatusCanceled,
		"success":     OrderStatusCompleted,
		"expired":     OrderStatusExpired,
		"frobnicated": OrderStatusUnknown,
		"":            OrderStatusUnknown,
	}
	for raw, want := range cases {
		if got := ParseOrderStatus(raw); got != want {
			t.Errorf("ParseOrderStatus(%q) = %s, want %s", raw, got, want)
		}
	}
}
