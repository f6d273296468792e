package db

import (
	"context"
	"fmt"

	"github.com/atlas-ai-architect/p2palertbot/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CounterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// IncrementIfBelow lazily creates the (user, day) row, then performs the
// cap check and the increment as one conditional UPDATE. The database
// executes that statement atomically, so concurrent attempts for the same
// user can never push the counter past the limit.
func (r *CounterRepository) IncrementIfBelow(ctx context.Context, userID uint, day string, limit int) (bool, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoNothing: true,
	}).Create(&counterModel{UserID: userID, Day: day, Count: 0}).Error
	if err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).
		Model(&counterModel{}).
		Where("user_id = ? AND day = ? AND count < ?", userID, day, limit).
		Update("count", gorm.Expr("count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *CounterRepository) Get(ctx context.Context, userID uint, day string) (int, error) {
	var model counterModel
	err := r.db.WithContext(ctx).Where("user_id = ? AND day = ?", userID, day).First(&model).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if model.Count < 0 {
		return 0, fmt.Errorf("counter for user %d on %s is negative: %w", userID, day, domain.ErrInvariantViolation)
	}
	return model.Count, nil
}

func (r *CounterRepository) DeleteBefore(ctx context.Context, day string) (int64, error) {
	result := r.db.WithContext(ctx).Where("day < ?", day).Delete(&counterModel{})
	return result.RowsAffected, result.Error
}
