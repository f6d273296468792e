package nostr

import (
	"context"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atlas-ai-architect/p2palertbot/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	baseDelay        = 1 * time.Second
	maxDelay         = 60 * time.Second
	maxBackoffShift  = 6
	handshakeTimeout = 10 * time.Second
)

// Health is the observable connection state of one relay.
type Health int32

const (
	HealthDisconnected Health = iota
	HealthConnected
	HealthReconnecting
)

func (h Health) String() string {
	switch h {
	case HealthConnected:
		return "connected"
	case HealthReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// Relay owns one persistent subscription to one remote endpoint. It
// reconnects forever with capped exponential backoff: this is a
// liveness-critical background connection that never gives up. Every
// received order event is pushed to the sink exactly as parsed; dedup and
// validation are downstream concerns.
type Relay struct {
	url         string
	kind        int
	sink        domain.EventSink
	dialer      *websocket.Dialer
	readTimeout time.Duration
	logger      *zap.Logger

	mu      sync.RWMutex
	writeMu sync.Mutex
	conn    *websocket.Conn

	health atomic.Int32
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRelay(url string, kind int, readTimeout time.Duration, sink domain.EventSink, logger *zap.Logger) *Relay {
	return &Relay{
		url:  url,
		kind: kind,
		sink: sink,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		readTimeout: readTimeout,
		logger:      logger.With(zap.String("relay", url)),
	}
}

// URL returns the endpoint address this relay is bound to.
func (r *Relay) URL() string { return r.url }

// Health returns the current connection state.
func (r *Relay) Health() Health {
	return Health(r.health.Load())
}

// Connect starts the connection loop in the background.
func (r *Relay) Connect(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.connectionLoop(ctx)
}

// Disconnect stops the loop and unblocks any network wait.
func (r *Relay) Disconnect() {
	if r.cancel != nil {
		r.cancel()
	}
	r.closeConnection()
	r.wg.Wait()
	r.health.Store(int32(HealthDisconnected))
}

func (r *Relay) connectionLoop(ctx context.Context) {
	defer r.wg.Done()
	retry := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := r.connect(ctx); err != nil {
			r.health.Store(int32(HealthReconnecting))
			delay := backoff(retry)
			r.logger.Warn("relay connect failed",
				zap.Error(err), zap.Int("retry", retry), zap.Duration("backoff", delay))
			retry++
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retry = 0
		r.health.Store(int32(HealthConnected))
		r.readLoop(ctx)
		r.health.Store(int32(HealthReconnecting))
	}
}

func (r *Relay) connect(ctx context.Context) error {
	conn, _, err := r.dialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()

	frame, err := subscribeFrame(uuid.NewString(), r.kind)
	if err != nil {
		r.closeConnection()
		return err
	}
	if err := r.threadSafeWrite(websocket.TextMessage, frame); err != nil {
		r.closeConnection()
		return err
	}

	r.logger.Info("relay connected", zap.Int("kind", r.kind))
	return nil
}

func (r *Relay) threadSafeWrite(msgType int, data []byte) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.conn == nil {
		return websocket.ErrCloseSent
	}
	return r.conn.WriteMessage(msgType, data)
}

func (r *Relay) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.closeConnection()
			return
		default:
		}

		r.mu.RLock()
		conn := r.conn
		r.mu.RUnlock()
		if conn == nil {
			return
		}
		if r.readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(r.readTimeout))
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				r.logger.Warn("relay read failed", zap.Error(err))
			}
			r.closeConnection()
			return
		}
		r.handleFrame(data)
	}
}

func (r *Relay) handleFrame(data []byte) {
	event, notice, err := decodeFrame(data, r.url)
	if err != nil {
		// Malformed frames are dropped, never fatal.
		r.logger.Debug("relay frame ignored", zap.Error(err))
		return
	}
	if notice != "" {
		r.logger.Info("relay notice", zap.String("notice", notice))
		return
	}
	if event == nil {
		return
	}
	r.sink.Publish(*event)
}

func (r *Relay) closeConnection() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		_ = r.conn.Close()
		r.conn = nil
	}
}

// backoff grows exponentially from baseDelay up to maxDelay, with a small
// jitter so a relay restart does not synchronize every client.
func backoff(retry int) time.Duration {
	if retry > maxBackoffShift {
		retry = maxBackoffShift
	}
	delay := baseDelay << retry
	if delay > maxDelay {
		delay = maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(baseDelay)))
	return delay + jitter
}
