package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atlas-ai-architect/p2palertbot/internal/domain"
	"go.uber.org/zap"
)

// Dispatcher hands a notification directive to the outbound transport.
type Dispatcher interface {
	Dispatch(ctx context.Context, notification domain.Notification) error
}

// Pipeline fans in raw events from the relay connections through a bounded
// merge queue and runs each through normalize → deduplicate → match →
// throttle → dispatch. Relay delivery never blocks on pipeline work: when
// the queue is full the newest event is dropped, which keeps already
// queued events from being starved.
type Pipeline struct {
	inbox      chan domain.OrderEvent
	dedup      *Deduplicator
	throttle   *Throttle
	users      domain.UserRepository
	alerts     domain.AlertRepository
	orders     domain.OrderRepository
	dispatcher Dispatcher
	logger     *zap.Logger
	workers    int

	dropped uint64
	wg      sync.WaitGroup
}

func NewPipeline(
	queueSize int,
	workers int,
	dedup *Deduplicator,
	throttle *Throttle,
	users domain.UserRepository,
	alerts domain.AlertRepository,
	orders domain.OrderRepository,
	dispatcher Dispatcher,
	logger *zap.Logger,
) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		inbox:      make(chan domain.OrderEvent, queueSize),
		dedup:      dedup,
		throttle:   throttle,
		users:      users,
		alerts:     alerts,
		orders:     orders,
		dispatcher: dispatcher,
		logger:     logger,
		workers:    workers,
	}
}

// Publish implements domain.EventSink. Drop-newest on overflow.
func (p *Pipeline) Publish(event domain.OrderEvent) bool {
	select {
	case p.inbox <- event:
		return true
	default:
		dropped := atomic.AddUint64(&p.dropped, 1)
		p.logger.Warn("ingestion queue full, event dropped",
			zap.String("event_id", event.ID),
			zap.String("relay", event.Relay),
			zap.Uint64("dropped_total", dropped),
		)
		return false
	}
}

// Dropped reports how many events were shed at the merge queue.
func (p *Pipeline) Dropped() uint64 {
	return atomic.LoadUint64(&p.dropped)
}

// QueueDepth reports how many events are waiting in the merge queue.
func (p *Pipeline) QueueDepth() int {
	return len(p.inbox)
}

// CacheSize reports how many order identities the deduplicator holds.
func (p *Pipeline) CacheSize() int {
	return p.dedup.Size()
}

// Run starts the worker pool and blocks until ctx is canceled and every
// in-flight event has finished its step.
func (p *Pipeline) Run(ctx context.Context) {
	p.logger.Info("pipeline starting", zap.Int("workers", p.workers), zap.Int("queue_size", cap(p.inbox)))
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	p.wg.Wait()
	p.logger.Info("pipeline stopped", zap.Uint64("dropped_total", p.Dropped()))
}

func (p *Pipeline) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-p.inbox:
			// In-flight steps run to completion even during shutdown, so
			// counter increments and cache writes are never left partial.
			p.process(context.WithoutCancel(ctx), event)
		}
	}
}

func (p *Pipeline) process(ctx context.Context, event domain.OrderEvent) {
	now := time.Now()

	order, err := NormalizeEvent(event, now)
	if err != nil {
		var reject *RejectError
		if errors.As(err, &reject) {
			p.logger.Debug("event rejected",
				zap.String("event_id", event.ID),
				zap.String("relay", event.Relay),
				zap.String("reason", reject.Reason),
			)
		}
		return
	}

	class := p.dedup.Classify(order)
	switch class {
	case ClassDuplicate, ClassStaleConflict:
		return
	case ClassNew, ClassUpdated:
	}

	p.logger.Debug("order accepted",
		zap.String("order_id", order.OrderID),
		zap.String("classification", class.String()),
		zap.Uint64("seq", order.RawSequence),
	)

	if p.orders != nil {
		if err := p.orders.Upsert(ctx, order); err != nil {
			p.logger.Warn("failed to persist order snapshot",
				zap.String("order_id", order.OrderID), zap.Error(err))
			// Persistence of the snapshot is best-effort; matching
			// continues on the in-memory authoritative copy.
		}
	}

	candidates, err := p.alerts.ListActiveCandidates(ctx, order.FiatCode, order.Kind)
	if err != nil {
		p.logger.Warn("failed to load candidate alerts",
			zap.String("order_id", order.OrderID), zap.Error(err))
		return
	}

	for _, alert := range MatchAlerts(*order, candidates, p.logger) {
		p.notify(ctx, *order, alert, now)
	}
}

func (p *Pipeline) notify(ctx context.Context, order domain.Order, alert domain.Alert, now time.Time) {
	user, err := p.users.GetByID(ctx, alert.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return
		}
		p.logger.Warn("failed to load user for notification",
			zap.Uint("user_id", alert.UserID), zap.Error(err))
		return
	}

	decision, err := p.throttle.Check(ctx, *user, now)
	if err != nil {
		p.logger.Warn("throttle check failed, notification abandoned",
			zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}
	if decision == DecisionDeny {
		p.logger.Debug("notification denied by daily cap",
			zap.Uint("user_id", user.ID),
			zap.Uint("alert_id", alert.ID),
			zap.String("order_id", order.OrderID),
		)
		return
	}

	notification := domain.Notification{User: *user, Order: order, Alert: alert}
	if err := p.dispatcher.Dispatch(ctx, notification); err != nil {
		p.logger.Warn("dispatch failed",
			zap.Uint("user_id", user.ID),
			zap.String("order_id", order.OrderID),
			zap.Error(err),
		)
	}
}
