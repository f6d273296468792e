package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/atlas-ai-architect/p2palertbot/internal/domain"
	"go.uber.org/zap"
)

func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

// Notifier delivers notification directives over Telegram. It is the
// dispatch collaborator: the pipeline decides who gets notified, this
// layer only renders and sends.
type Notifier struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

func NewNotifier(api *tgbotapi.BotAPI, logger *zap.Logger) *Notifier {
	return &Notifier{api: api, logger: logger}
}

func (n *Notifier) Dispatch(ctx context.Context, notification domain.Notification) error {
	text := renderOrder(notification)
	n.logger.Info("telegram notify send",
		zap.Int64("telegram_user_id", notification.User.TelegramUserID),
		zap.String("order_id", notification.Order.OrderID),
		zap.Uint("alert_id", notification.Alert.ID),
	)
	msg := tgbotapi.NewMessage(notification.User.TelegramUserID, text)
	_, err := n.api.Send(msg)
	if err != nil {
		n.logger.Warn("failed to notify", zap.Error(err))
	}
	return err
}

func renderOrder(notification domain.Notification) string {
	order := notification.Order

	var b strings.Builder
	fmt.Fprintf(&b, "Alert #%d matched a %s order on %s\n", notification.Alert.ID, order.Kind, order.Platform)
	fmt.Fprintf(&b, "Fiat: %s", order.FiatCode)
	if !order.FiatAmount.IsZero() {
		fmt.Fprintf(&b, " %s", order.FiatAmount.String())
	}
	b.WriteString("\n")
	if order.AmountSats > 0 {
		fmt.Fprintf(&b, "Amount: %d sats\n", order.AmountSats)
	} else {
		b.WriteString("Amount: market\n")
	}
	if order.PaymentMethod != "" {
		fmt.Fprintf(&b, "Payment: %s\n", order.PaymentMethod)
	}
	fmt.Fprintf(&b, "Premium: %s%%\n", order.PriceMarginPct.String())
	if order.SourceURL != "" {
		fmt.Fprintf(&b, "%s\n", order.SourceURL)
	}
	return b.String()
}
