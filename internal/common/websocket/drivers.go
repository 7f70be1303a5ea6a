package websocket

import (
	"net/http"
	"time"

	"fleet-dispatch/internal/common/auth"
	"fleet-dispatch/internal/common/logger"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// DriverWSHandler upgrades a driver connection and registers it with
// the hub under "driver_<name>" so the dispatcher can reach it.
func DriverWSHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")

		token := r.URL.Query().Get("token")
		if _, err := auth.ValidateToken(token); err != nil {
			logger.Warn("ws_invalid_token", "Driver token invalid", requestID, "", err.Error())
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		driverName := r.URL.Query().Get("driver")
		if driverName == "" {
			http.Error(w, "driver is required", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("ws_upgrade_failed", "Failed to upgrade connection", requestID, "", err.Error())
			return
		}

		client := NewClient("driver_"+driverName, conn)
		hub.AddClient(client)
		logger.Info("ws_driver_connected", "Driver connected: "+driverName, requestID, "")

		conn.SetPongHandler(func(string) error {
			client.LastPong = time.Now()
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		go client.WritePump(hub)

		// Drain incoming frames; drivers only receive on this channel.
		go func() {
			defer hub.RemoveClient(client.ID)
			for {
				conn.SetReadDeadline(time.Now().Add(60 * time.Second))
				if _, _, err := conn.ReadMessage(); err != nil {
					logger.Debug("ws_driver_disconnected", "Driver disconnected: "+driverName, requestID, "")
					return
				}
			}
		}()
	}
}
