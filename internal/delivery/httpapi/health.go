package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/atlas-ai-architect/p2palertbot/internal/infra/nostr"
	"github.com/atlas-ai-architect/p2palertbot/internal/usecase"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthHandler exposes the operational state of the ingestion side:
// per-relay connection health, merge queue pressure and dedup cache size.
type HealthHandler struct {
	DB       *gorm.DB
	Relays   []*nostr.Relay
	Pipeline *usecase.Pipeline
	started  time.Time
}

func NewHealthHandler(db *gorm.DB, relays []*nostr.Relay, pipeline *usecase.Pipeline) *HealthHandler {
	return &HealthHandler{DB: db, Relays: relays, Pipeline: pipeline, started: time.Now()}
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

func (h *HealthHandler) health(c *gin.Context) {
	relays := make([]gin.H, 0, len(h.Relays))
	connected := 0
	for _, relay := range h.Relays {
		state := relay.Health()
		if state == nostr.HealthConnected {
			connected++
		}
		relays = append(relays, gin.H{"url": relay.URL(), "state": state.String()})
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"uptime":           time.Since(h.started).String(),
		"relays":           relays,
		"relays_connected": connected,
		"queue_depth":      h.Pipeline.QueueDepth(),
		"events_dropped":   h.Pipeline.Dropped(),
		"orders_cached":    h.Pipeline.CacheSize(),
	})
}

func (h *HealthHandler) ready(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_missing"})
		return
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_error"})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Serve runs the health server until ctx is canceled. Listen errors are
// logged, never fatal to the process.
func Serve(ctx context.Context, addr string, handler *HealthHandler, logger *zap.Logger) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.Register(router)

	server := &http.Server{Addr: addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("health server listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("health server stopped", zap.Error(err))
	}
}
