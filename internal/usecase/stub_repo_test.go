package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atlas-ai-architect/p2palertbot/internal/domain"
)

// In-memory collaborators for pipeline and throttle tests. The counter
// stub honors the same atomic check-and-increment contract as the real
// repository.

type memCounterRepo struct {
	mu     sync.Mutex
	counts map[string]int
	fail   error
}

func newMemCounterRepo() *memCounterRepo {
	return &memCounterRepo{counts: make(map[string]int)}
}

func counterKey(userID uint, day string) string {
	return fmt.Sprintf("%s/%d", day, userID)
}

func (r *memCounterRepo) IncrementIfBelow(ctx context.Context, userID uint, day string, limit int) (bool, error) {
	if r.fail != nil {
		return false, r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := counterKey(userID, day)
	if r.counts[key] >= limit {
		return false, nil
	}
	r.counts[key]++
	return true, nil
}

func (r *memCounterRepo) Get(ctx context.Context, userID uint, day string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[counterKey(userID, day)], nil
}

func (r *memCounterRepo) DeleteBefore(ctx context.Context, day string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for key := range r.counts {
		if strings.Split(key, "/")[0] < day {
			delete(r.counts, key)
			removed++
		}
	}
	return removed, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[uint]domain.User
}

func newMemUserRepo(users ...domain.User) *memUserRepo {
	r := &memUserRepo{users: make(map[uint]domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) GetByTelegramID(ctx context.Context, telegramUserID int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TelegramUserID == telegramUserID {
			user := u
			return &user, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) GetByID(ctx context.Context, userID uint) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		user := u
		return &user, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, userID)
	return nil
}

type memAlertRepo struct {
	mu     sync.Mutex
	alerts []domain.Alert
	fail   error
}

func (r *memAlertRepo) Create(ctx context.Context, alert *domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, *alert)
	return nil
}

func (r *memAlertRepo) ListByUser(ctx context.Context, userID uint) ([]domain.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Alert
	for _, a := range r.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAlertRepo) SetEnabled(ctx context.Context, userID uint, alertID uint, enabled bool) error {
	return nil
}

func (r *memAlertRepo) Delete(ctx context.Context, userID uint, alertID uint) error {
	return nil
}

func (r *memAlertRepo) ListActiveCandidates(ctx context.Context, fiatCode string, kind domain.OrderKind) ([]domain.Alert, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Alert
	for _, a := range r.alerts {
		if !a.Enabled {
			continue
		}
		if a.FiatCode != "" && !strings.EqualFold(a.FiatCode, fiatCode) {
			continue
		}
		if a.Kind != "" && a.Kind != kind {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]domain.Order)}
}

func (r *memOrderRepo) Upsert(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.OrderID] = *order
	return nil
}

func (r *memOrderRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[orderID]; ok {
		order := o
		return &order, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memOrderRepo) DeleteSeenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, o := range r.orders {
		if o.LastSeenAt.Before(cutoff) {
			delete(r.orders, id)
			removed++
		}
	}
	return removed, nil
}

type captureDispatcher struct {
	mu   sync.Mutex
	sent []domain.Notification
	fail error
}

func (d *captureDispatcher) Dispatch(ctx context.Context, notification domain.Notification) error {
	if d.fail != nil {
		return d.fail
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, notification)
	return nil
}

func (d *captureDispatcher) notifications() []domain.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.Notification, len(d.sent))
	copy(out, d.sent)
	return out
}
