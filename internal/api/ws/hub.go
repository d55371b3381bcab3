package ws

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/DocStudio/backend/internal/shared/id"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBuffer     = 64
	replyWait      = writeWait
)

var api = sonic.ConfigStd

// Metrics records connection activity
type Metrics interface {
	IncWSConnections()
	DecWSConnections()
	RecordWSMessage(direction, msgType string)
}

// Event is a server-pushed notification
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Hub tracks open connections and fans events out to them
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	logger  *zap.Logger
	metrics Metrics
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{clients: make(map[*client]struct{}), logger: logger}
}

// WithMetrics adds connection metrics
func (h *Hub) WithMetrics(m Metrics) *Hub {
	h.metrics = m
	return h
}

// Broadcast pushes an event to every client and returns how many accepted
// it. Clients with a full send buffer miss the event.
func (h *Hub) Broadcast(eventType string, data interface{}) int {
	msg, err := api.Marshal(Event{Type: eventType, Data: data, Timestamp: time.Now().Unix()})
	if err != nil {
		h.logger.Error("Failed to encode event", zap.String("type", eventType), zap.Error(err))
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for c := range h.clients {
		if c.enqueue(msg) {
			sent++
			h.record("out", eventType)
		} else {
			h.logger.Warn("Dropped event for slow client", zap.String("type", eventType))
		}
	}
	return sent
}

// Clients returns the number of open connections
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close sends a close frame to every client. Their read loops then exit
// and unregister them.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.close()
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if ok {
		c.close()
		if h.metrics != nil {
			h.metrics.DecWSConnections()
		}
	}
}

func (h *Hub) record(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}

// client is one connection. Only writePump writes to conn.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		id:   id.NewConnectionID().String(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *client) enqueue(msg []byte) bool {
	if c.closed() {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// deliver queues msg, waiting up to timeout for room in a full buffer.
// It gives up early once the client is closed.
func (c *client) deliver(msg []byte, timeout time.Duration) bool {
	if c.enqueue(msg) {
		return true
	}
	if c.closed() {
		return false
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case c.send <- msg:
		return true
	case <-c.done:
		return false
	case <-timer.C:
		return false
	}
}

func (c *client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

func (c *client) writePump(logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("WebSocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
