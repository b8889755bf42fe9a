// Package livereload tells open preview tabs to reload after a rebuild.
package livereload

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/toudaivocadou/vocadou/internal/logging"
)

// Message is sent to the browser after every build.
type Message struct {
	Type      string    `json:"type"`
	BuildID   int       `json:"build_id"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	TypeReload = "reload"
	TypeError  = "build_error"
)

const (
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected preview tabs and broadcasts build results to them.
type Hub struct {
	clients map[*client]struct{}
	mutex   sync.RWMutex

	origins []string
	logger  logging.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewHub creates a hub. origins are the host patterns browsers may connect
// from; nil accepts only same-origin requests.
func NewHub(origins []string, logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients: make(map[*client]struct{}),
		origins: origins,
		logger:  logger.WithComponent("livereload"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// ServeHTTP upgrades the request and keeps the connection until the tab
// closes or the hub shuts down.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.ctx.Err() != nil {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  h.origins,
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		// Accept has already written the response
		h.logger.Warn(r.Context(), err, "WebSocket upgrade failed", "remote", r.RemoteAddr)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)

	// browsers never send anything; reading only notices the close
	ctx := conn.CloseRead(h.ctx)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.writeLoop(ctx, c)
	}()
}

func (h *Hub) register(c *client) {
	h.mutex.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mutex.Unlock()

	h.logger.Debug(h.ctx, "Preview connected", "clients", n)
}

func (h *Hub) unregister(c *client) {
	h.mutex.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mutex.Unlock()

	if ok {
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
		h.logger.Debug(h.ctx, "Preview disconnected", "clients", n)
	}
}

func (h *Hub) writeLoop(ctx context.Context, c *client) {
	defer h.unregister(c)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		case <-ticker.C:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(wctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// Broadcast sends msg to every connected tab. Tabs that cannot keep up
// are dropped.
func (h *Hub) Broadcast(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error(h.ctx, err, "Failed to encode reload message")
		return
	}

	h.mutex.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mutex.RUnlock()

	for _, c := range slow {
		h.unregister(c)
	}
}

// Clients returns the number of connected tabs.
func (h *Hub) Clients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Shutdown closes every connection and waits for the hub's goroutines.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(h.cancel)

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
