package broadcast

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Displays run on other origins (POS, KDS, admin frontends).
		return true
	},
}

// WSHandler upgrades a display connection and bridges it to a hub session.
type WSHandler struct {
	hub    *Hub
	logger *logrus.Logger
}

func NewWSHandler(hub *Hub, logger *logrus.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade display connection")
		return
	}

	session := h.hub.Subscribe()
	go h.writePump(conn, session)
	go h.readPump(conn, session)
}

// writePump forwards hub events to the socket and keeps the connection
// alive with pings. It exits when the session channel closes (unsubscribed
// or dropped as a slow consumer).
func (h *WSHandler) writePump(conn *websocket.Conn, session *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-session.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.logger.WithError(err).Debug("Display write failed")
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames (displays only listen) and unsubscribes
// when the peer goes away.
func (h *WSHandler) readPump(conn *websocket.Conn, session *Session) {
	defer func() {
		h.hub.Unsubscribe(session)
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.WithError(err).Debug("Display connection error")
			}
			return
		}
	}
}
