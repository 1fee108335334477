package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Upgrade HTTP connection to WebSocket
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamToasts godoc
// @Summary      Toast stream (WebSocket)
// @Description  Streams every toast raised by the client core as a JSON text frame
// @Description  ({"type","text1","text2"}). Connect with ws:// or wss://. Browsers that cannot
// @Description  send X-Client-Key may pass it as the client_key query parameter.
// @Tags         WebSocket
// @Param        client_key query string false "client key"
// @Success      101 {string} string "Switching Protocols"
// @Failure      403 {object} handler.ErrorResponse
// @Router       /ws/toasts [get]
func (h *Handler) StreamToasts(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("StreamToasts(): failed to upgrade to WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	id, toasts, cancel := h.toasts.Subscribe()
	defer cancel()
	logger := h.logger.With(zap.String("subscriber", id))
	logger.Info("StreamToasts(): client connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		readPump(conn, logger)
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			logger.Info("StreamToasts(): client disconnected")
			return
		case t, ok := <-toasts:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(t); err != nil {
				logger.Warn("StreamToasts(): failed to send toast", zap.Error(err))
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

// readPump drains client frames so control messages are processed; it
// returns when the connection closes.
func readPump(conn *websocket.Conn, logger *zap.Logger) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		messageType, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("readPump(): unexpected close", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			logger.Debug("readPump(): ignoring non-text frame", zap.Int("type", messageType))
		}
	}
}
