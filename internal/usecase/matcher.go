package usecase

import (
	"github.com/atlas-ai-architect/p2palertbot/internal/domain"
	"go.uber.org/zap"
)

// MatchAlerts evaluates the candidate alerts against the order and returns
// the matches in candidate order. Pure: no I/O, deterministic for
// identical inputs.
func MatchAlerts(order domain.Order, candidates []domain.Alert, logger *zap.Logger) []domain.Alert {
	var matched []domain.Alert
	for _, alert := range candidates {
		if !alert.Matches(order) {
			continue
		}
		if alert.IsCatchAll() {
			logger.Warn("catch-all alert matched",
				zap.Uint("alert_id", alert.ID),
				zap.Uint("user_id", alert.UserID),
			)
		}
		matched = append(matched, alert)
	}
	return matched
}
