package plantjournal

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API serves a browser UI on a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleLive upgrades the connection and streams entity mutations as JSON
// messages until the client disconnects or the bus shuts down.
func (a *App) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	id, events := a.bus.Subscribe()
	defer a.bus.Unsubscribe(id)

	a.log.Debug().Str("subscriber", id.String()).Msg("live feed connected")

	// Drain incoming frames so close and ping frames are processed; the
	// feed is one-directional.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case m, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(m); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
