// Package feed streams ticket change events to browsers over a websocket.
package feed

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"shift-tracker/internal/realtime"
	"shift-tracker/internal/schedule"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	// A client that falls this far behind is dropped; it reloads on reconnect.
	sendBuffer = 256
)

type Subscriber interface {
	Subscribe(h realtime.Handlers) (unsubscribe func())
}

func upgrader(origins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || len(origins) == 0 || slices.Contains(origins, origin)
		},
	}
}

// Feed upgrades the request and pushes every ticket event as JSON until the
// client goes away.
func Feed(log *slog.Logger, sub Subscriber, origins []string) http.HandlerFunc {
	up := upgrader(origins)

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.feed.Feed"

		log := log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))

		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("failed to upgrade to websocket", slog.String("error", err.Error()))
			return
		}
		defer conn.Close()

		send := make(chan realtime.Event, sendBuffer)
		overflow := make(chan struct{})
		var overflowed bool

		push := func(ev realtime.Event) {
			if overflowed {
				return
			}
			select {
			case send <- ev:
			default:
				overflowed = true
				close(overflow)
			}
		}
		unsubscribe := sub.Subscribe(realtime.Handlers{
			OnInsert: func(t schedule.Ticket) { push(realtime.InsertEvent(t)) },
			OnUpdate: func(t schedule.Ticket) { push(realtime.UpdateEvent(t)) },
			OnDelete: func(id string) { push(realtime.DeleteEvent(id)) },
		})
		defer unsubscribe()

		log.Info("feed client connected")

		closed := make(chan struct{})
		go readPump(conn, closed)
		writePump(log, conn, send, overflow, closed)

		log.Info("feed client disconnected")
	}
}

// readPump discards client messages and keeps the pong deadline fresh.
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(log *slog.Logger, conn *websocket.Conn, send <-chan realtime.Event, overflow, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.Info("feed write failed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-overflow:
			log.Warn("feed client too slow, dropping")
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow"),
				time.Now().Add(writeWait))
			return
		case <-closed:
			return
		}
	}
}
