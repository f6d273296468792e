package usecase

import (
	"context"
	"time"

	"github.com/atlas-ai-architect/p2palertbot/internal/domain"
)

type Decision int

const (
	DecisionAllow Decision = iota
	DecisionDeny
)

func (d Decision) String() string {
	if d == DecisionAllow {
		return "allow"
	}
	return "deny"
}

// Throttle enforces the free-tier daily notification cap. Paid users are
// always allowed and their counters are never touched. The cap check and
// increment are one atomic repository operation, so concurrent attempts
// for the same user cannot exceed the cap.
type Throttle struct {
	counters domain.CounterRepository
	dailyCap int
	location *time.Location
}

func NewThrottle(counters domain.CounterRepository, dailyCap int, location *time.Location) *Throttle {
	if location == nil {
		location = time.UTC
	}
	return &Throttle{counters: counters, dailyCap: dailyCap, location: location}
}

// Day returns the calendar date key for now in the reference timezone.
func (t *Throttle) Day(now time.Time) string {
	return now.In(t.location).Format(domain.DayKey)
}

// Check decides one notification attempt. A DENY is not an error; an error
// means the counter store was unavailable and the attempt is abandoned.
func (t *Throttle) Check(ctx context.Context, user domain.User, now time.Time) (Decision, error) {
	if user.Tier == domain.TierPaid {
		return DecisionAllow, nil
	}
	incremented, err := t.counters.IncrementIfBelow(ctx, user.ID, t.Day(now), t.dailyCap)
	if err != nil {
		return DecisionDeny, err
	}
	if !incremented {
		return DecisionDeny, nil
	}
	return DecisionAllow, nil
}
