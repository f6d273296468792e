package db

import (
	"context"
	"strings"
	"time"

	"github.com/atlas-ai-architect/p2palertbot/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	model := mapAlertToModel(*alert)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	alert.ID = model.ID
	alert.CreatedAt = model.CreatedAt
	alert.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *AlertRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Alert, error) {
	var models []alertModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	return mapAlertsToDomain(models), nil
}

func (r *AlertRepository) SetEnabled(ctx context.Context, userID uint, alertID uint, enabled bool) error {
	result := r.db.WithContext(ctx).Model(&alertModel{}).Where("id = ? AND user_id = ?", alertID, userID).Update("enabled", enabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AlertRepository) Delete(ctx context.Context, userID uint, alertID uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", alertID, userID).Delete(&alertModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListActiveCandidates bounds the matcher's candidate set by the order's
// coarse attributes: an alert qualifies when its fiat code and kind
// predicates are unset or equal to the order's.
func (r *AlertRepository) ListActiveCandidates(ctx context.Context, fiatCode string, kind domain.OrderKind) ([]domain.Alert, error) {
	var models []alertModel
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Where("fiat_code = '' OR LOWER(fiat_code) = LOWER(?)", fiatCode).
		Where("kind = '' OR kind = ?", string(kind)).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return mapAlertsToDomain(models), nil
}

func mapAlertsToDomain(models []alertModel) []domain.Alert {
	alerts := make([]domain.Alert, 0, len(models))
	for _, model := range models {
		var deleted *time.Time
		if model.DeletedAt.Valid {
			t := model.DeletedAt.Time
			deleted = &t
		}
		alerts = append(alerts, domain.Alert{
			ID:                model.ID,
			UserID:            model.UserID,
			Kind:              domain.OrderKind(model.Kind),
			FiatCode:          model.FiatCode,
			MinAmountSats:     model.MinAmountSats,
			MaxAmountSats:     model.MaxAmountSats,
			MinPriceMarginPct: decimalFromColumn(model.MinPremium),
			MaxPriceMarginPct: decimalFromColumn(model.MaxPremium),
			PaymentMethod:     model.PaymentMethod,
			Platforms:         platformsFromColumn(model.Platforms),
			Enabled:           model.Enabled,
			CreatedAt:         model.CreatedAt,
			UpdatedAt:         model.UpdatedAt,
			DeletedAt:         deleted,
		})
	}
	return alerts
}

func mapAlertToModel(alert domain.Alert) alertModel {
	return alertModel{
		ID:            alert.ID,
		UserID:        alert.UserID,
		Kind:          string(alert.Kind),
		FiatCode:      alert.FiatCode,
		MinAmountSats: alert.MinAmountSats,
		MaxAmountSats: alert.MaxAmountSats,
		MinPremium:    decimalToColumn(alert.MinPriceMarginPct),
		MaxPremium:    decimalToColumn(alert.MaxPriceMarginPct),
		PaymentMethod: alert.PaymentMethod,
		Platforms:     platformsToColumn(alert.Platforms),
		Enabled:       alert.Enabled,
		CreatedAt:     alert.CreatedAt,
		UpdatedAt:     alert.UpdatedAt,
	}
}

func decimalFromColumn(raw *string) *decimal.Decimal {
	if raw == nil || *raw == "" {
		return nil
	}
	value, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil
	}
	return &value
}

func decimalToColumn(value *decimal.Decimal) *string {
	if value == nil {
		return nil
	}
	s := value.String()
	return &s
}

func platformsFromColumn(raw string) []domain.Platform {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	platforms := make([]domain.Platform, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			platforms = append(platforms, domain.Platform(trimmed))
		}
	}
	return platforms
}

func platformsToColumn(platforms []domain.Platform) string {
	if len(platforms) == 0 {
		return ""
	}
	names := make([]string, 0, len(platforms))
	for _, p := range platforms {
		names = append(names, string(p))
	}
	return strings.Join(names, ",")
}
