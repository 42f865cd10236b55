// Package wsdelivery broadcasts parsed packets to connected websocket
// clients: the concrete "external consumer" gnet/sniffer's Callback leaves
// abstract, for live-tailing a capture session from a browser or CLI tool.
package wsdelivery

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sofiworker/pktcore/gnet/frame"
)

// conn is the subset of *websocket.Conn the hub needs, narrowed so tests
// can substitute a fake without opening a real socket.
type conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// message is the JSON envelope sent to every connected client.
type message struct {
	Timestamp time.Time          `json:"timestamp"`
	Length    int                `json:"length"`
	Layers    frame.ParsedPacket `json:"layers"`
}

// Hub fans out parsed packets to every currently registered client.
// Registration/broadcast are safe for concurrent use.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[conn]struct{}

	upgrader websocket.Upgrader
}

// NewHub returns an empty Hub. The default upgrader accepts any origin,
// matching a local diagnostic tool rather than a public-facing service.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request to a websocket connection and registers
// it to receive broadcast packets until the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("wsdelivery: upgrade failed", zap.Error(err))
		return
	}
	h.register(c)

	go func() {
		defer h.Unregister(c)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// register adds c to the broadcast set.
func (h *Hub) register(c conn) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes and closes c.
func (h *Hub) Unregister(c conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.Close()
}

// ClientCount reports the number of currently registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Callback is a gnet/sniffer.Callback that broadcasts parsed to every
// connected client as JSON. Marshal failures and disconnected clients are
// logged and otherwise ignored: one slow or dead client must never stall
// the capture pipeline.
func (h *Hub) Callback(raw frame.RawFrame, parsed frame.ParsedPacket) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	payload, err := json.Marshal(message{
		Timestamp: raw.Timestamp,
		Length:    raw.Length,
		Layers:    parsed,
	})
	if err != nil {
		h.logger.Warn("wsdelivery: marshal parsed packet failed", zap.Error(err))
		return
	}

	for c := range h.clients {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warn("wsdelivery: write to client failed", zap.Error(err))
		}
	}
}
