package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/examina/examina-backend/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	monitorWriteWait = 10 * time.Second
	monitorPongWait  = 60 * time.Second
	// Must be shorter than monitorPongWait.
	monitorPingPeriod = 45 * time.Second
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty origin list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams submission events for one exam over WebSocket.
// Events are produced on a Redis Pub/Sub channel at finalization time, so
// every server instance sees every submission.
type MonitorHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "monitor_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// StreamExam godoc
// WS /ws/v1/admin/exams/:exam_id/monitor
// Upgrades to WebSocket and forwards submission events as they happen.
func (h *MonitorHandler) StreamExam(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	channel := config.CacheKey.SubmissionChannel(examID.String())
	sub := h.rdb.Subscribe(ctx, channel)
	defer sub.Close()

	wsLog := h.log.With().Str("exam_id", examID.String()).Logger()
	wsLog.Info().Msg("Monitor connected")

	// Reader goroutine: we never expect client messages, but reading is
	// required to process control frames and notice the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(monitorPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(monitorPongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(monitorPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub.Channel():
			if !ok {
				wsLog.Warn().Msg("Subscription channel closed")
				return
			}
			conn.SetWriteDeadline(time.Now().Add(monitorWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				wsLog.Debug().Err(err).Msg("Monitor write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(monitorWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			wsLog.Info().Msg("Monitor disconnected")
			return
		case <-ctx.Done():
			return
		}
	}
}
