package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// ErrInvariantViolation marks a state that the locking discipline should
// make unreachable, e.g. a negative notification counter. The affected
// operation is aborted loudly; the process keeps running.
var ErrInvariantViolation = errors.New("invariant violation")

type UserRepository interface {
	GetByTelegramID(ctx context.Context, telegramUserID int64) (*User, error)
	GetByID(ctx context.Context, userID uint) (*User, error)
	Create(ctx context.Context, user *User) error
	// Delete removes the user together with its alerts and notification
	// counters.
	Delete(ctx context.Context, userID uint) error
}

type AlertRepository interface {
	Create(ctx context.Context, alert *Alert) error
	ListByUser(ctx context.Context, userID uint) ([]Alert, error)
	SetEnabled(ctx context.Context, userID uint, alertID uint, enabled bool) error
	Delete(ctx context.Context, userID uint, alertID uint) error
	// ListActiveCandidates returns enabled alerts whose coarse predicates
	// (fiat code, kind) are either unset or equal to the given order
	// attributes. Finer predicates are evaluated by the matcher.
	ListActiveCandidates(ctx context.Context, fiatCode string, kind OrderKind) ([]Alert, error)
}

type OrderRepository interface {
	// Upsert stores the authoritative snapshot for an order id.
	Upsert(ctx context.Context, order *Order) error
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)
	// DeleteSeenBefore prunes orders not sighted since the cutoff and
	// returns how many rows were removed.
	DeleteSeenBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type CounterRepository interface {
	// IncrementIfBelow atomically increments the (user, day) counter when
	// its current value is strictly below limit, reporting whether the
	// increment happened. The check and the increment must be a single
	// atomic step with respect to concurrent callers.
	IncrementIfBelow(ctx context.Context, userID uint, day string, limit int) (bool, error)
	Get(ctx context.Context, userID uint, day string) (int, error)
	DeleteBefore(ctx context.Context, day string) (int64, error)
}
