package bots

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// wsConn serializes writes: gorilla connections allow only one concurrent
// writer, and pipeline pushes can race the read-loop's replies.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) writeText(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WebSocketChat is a development chat adapter: a plain-text WebSocket endpoint
// that speaks to the same gateway as the Telegram adapter. Each connection is
// one session, identified by the "user" query parameter.
type WebSocketChat struct {
	gateway      *Gateway
	messageLimit int
	upgrader     websocket.Upgrader
	log          *zap.Logger

	mu    sync.RWMutex
	conns map[string]*wsConn
}

// NewWebSocketChat creates the WebSocket dev chat adapter.
func NewWebSocketChat(gateway *Gateway, messageLimit int, log *zap.Logger) *WebSocketChat {
	return &WebSocketChat{
		gateway:      gateway,
		messageLimit: messageLimit,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:   log,
		conns: make(map[string]*wsConn),
	}
}

// ServeHTTP upgrades the connection and pumps messages through the gateway.
func (w *WebSocketChat) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(rw, "missing user query parameter", http.StatusBadRequest)
		return
	}

	raw, err := w.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		w.log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer raw.Close()
	conn := &wsConn{conn: raw}

	w.mu.Lock()
	w.conns[userID] = conn
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		// A reconnect may have replaced our entry; leave it alone then.
		if w.conns[userID] == conn {
			delete(w.conns, userID)
		}
		w.mu.Unlock()
	}()

	ctx := r.Context()
	for {
		_, data, err := raw.ReadMessage()
		if err != nil {
			return
		}

		reply, err := w.gateway.Process(ctx, IncomingMessage{
			Platform: PlatformWebSocket,
			ChatID:   userID,
			UserID:   userID,
			Text:     string(data),
		})
		if err != nil {
			w.log.Error("processing websocket message", zap.Error(err), zap.String("user", userID))
			reply = &OutgoingMessage{Text: "An error occurred: " + err.Error()}
		}
		if reply == nil || reply.Text == "" {
			continue
		}
		for _, chunk := range SplitMessage(reply.Text, w.messageLimit) {
			if err := conn.writeText([]byte(chunk)); err != nil {
				return
			}
		}
	}
}

// Send delivers an asynchronous message to a connected user, if any. Users who
// disconnected before a pipeline finished simply miss the push.
func (w *WebSocketChat) Send(_ context.Context, msg OutgoingMessage) error {
	w.mu.RLock()
	conn, ok := w.conns[msg.ChatID]
	w.mu.RUnlock()
	if !ok {
		return nil
	}
	for _, chunk := range SplitMessage(msg.Text, w.messageLimit) {
		if err := conn.writeText([]byte(chunk)); err != nil {
			return err
		}
	}
	return nil
}
