package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// watch upgrades to a WebSocket and writes one Summary per snapshot. The
// subscription is released when the peer goes away or the hub closes.
func (h *handlers) watch(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	sub, err := h.Logs.Subscribe(r.Context(), uid, chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	// read loop ends on client close/error
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	defer func() {
		_ = conn.Close()
		<-gone
	}()

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case l, ok := <-sub.C():
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "watch closed")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(meallog.Summarize(l)); err != nil {
				return
			}
		}
	}
}
