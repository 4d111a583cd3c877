package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Ping/Pong settings
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Serve upgrades the request and streams the session's events until the
// client disconnects or the session is closed.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := h.Subscribe(sessionID)
	defer sub.Close()

	log := h.logger.WithField("session", sessionID)
	log.Debug("Stream subscriber connected")

	// 클라이언트 메시지는 무시, pong과 종료 감지만 처리
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			log.Debug("Stream subscriber disconnected")
			return nil

		case ev, ok := <-sub.C:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
					time.Now().Add(writeWait))
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.WithError(err).Warn("Failed to write stream event")
				return err
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}
