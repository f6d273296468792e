package db

import (
	"context"
	"time"

	"github.com/atlas-ai-architect/p2palertbot/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Upsert stores the authoritative snapshot, replacing any previous row for
// the same order id.
func (r *OrderRepository) Upsert(ctx context.Context, order *domain.Order) error {
	model := mapOrderToModel(*order)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"kind", "fiat_code", "status", "amount_sats", "fiat_amount",
			"payment_method", "price_margin", "source_url", "platform",
			"last_seen_at", "raw_sequence", "updated_at",
		}),
	}).Create(&model).Error
}

func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	var model orderModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	order := mapOrderToDomain(model)
	return &order, nil
}

func (r *OrderRepository) DeleteSeenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("last_seen_at < ?", cutoff).Delete(&orderModel{})
	return result.RowsAffected, result.Error
}

func mapOrderToModel(order domain.Order) orderModel {
	return orderModel{
		OrderID:       order.OrderID,
		Kind:          string(order.Kind),
		FiatCode:      order.FiatCode,
		Status:        string(order.Status),
		AmountSats:    order.AmountSats,
		FiatAmount:    order.FiatAmount.String(),
		PaymentMethod: order.PaymentMethod,
		PriceMargin:   order.PriceMarginPct.String(),
		SourceURL:     order.SourceURL,
		Platform:      string(order.Platform),
		LastSeenAt:    order.LastSeenAt,
		RawSequence:   order.RawSequence,
	}
}

func mapOrderToDomain(model orderModel) domain.Order {
	fiatAmount, err := decimal.NewFromString(model.FiatAmount)
	if err != nil {
		fiatAmount = decimal.Zero
	}
	margin, err := decimal.NewFromString(model.PriceMargin)
	if err != nil {
		margin = decimal.Zero
	}
	return domain.Order{
		OrderID:        model.OrderID,
		Kind:           domain.OrderKind(model.Kind),
		FiatCode:       model.FiatCode,
		Status:         domain.OrderStatus(model.Status),
		AmountSats:     model.AmountSats,
		FiatAmount:     fiatAmount,
		PaymentMethod:  model.PaymentMethod,
		PriceMarginPct: margin,
		SourceURL:      model.SourceURL,
		Platform:       domain.Platform(model.Platform),
		LastSeenAt:     model.LastSeenAt,
		RawSequence:    model.RawSequence,
	}
}
