package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/marks-app/marks/internal/auth"
	"github.com/marks-app/marks/internal/feed"
	"github.com/marks-app/marks/internal/metrics"
)

const (
	feedWriteTimeout = 10 * time.Second
	feedPingPeriod   = 30 * time.Second
)

// feedHandler streams change-feed events over a WebSocket. Events are sent
// as JSON text messages; the subscription is torn down when the client
// disconnects.
type feedHandler struct {
	hub *feed.Hub
	log *zap.Logger

	upgrader websocket.Upgrader
}

func newFeedHandler(hub *feed.Hub, log *zap.Logger) *feedHandler {
	return &feedHandler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The session or bearer token already gates this endpoint.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Stream serves GET /api/v1/feed.
func (h *feedHandler) Stream(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.Warn("feed upgrade failed", zap.Error(err))
		return
	}
	metrics.FeedConnectionsTotal.Inc()

	sub := h.hub.Subscribe(feed.Bookmarks)

	// Reader goroutine: the client sends nothing meaningful, but reading is
	// required to process close and pong frames. Its exit signals disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		sub.Cancel()
		_ = conn.Close()
	}()

	for {
		select {
		case <-done:
			return

		case <-r.Context().Done():
			return

		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				h.log.Debug("feed write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
