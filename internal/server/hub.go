package server

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ahriknow/ahridocs/internal/watcher"
)

const (
	// ChangeMessageType tags folder change messages pushed to clients.
	ChangeMessageType = "file-system-changed"
	// StatusMessageType tags watch status messages pushed to clients.
	StatusMessageType = "watch-status"

	clientBuffer = 64
	writeTimeout = 5 * time.Second
)

// ChangeMessage is the websocket payload for one change.
type ChangeMessage struct {
	Type  string             `json:"type"`
	Kind  watcher.ChangeKind `json:"kind"`
	Path  string             `json:"path"`
	Path2 string             `json:"path2"`
}

// StatusMessage is the websocket payload for a watch status change.
type StatusMessage struct {
	Type  string        `json:"type"`
	State watcher.State `json:"state"`
	Root  string        `json:"root,omitempty"`
	Error string        `json:"error,omitempty"`
}

type hubClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes changes to every connected websocket client. It implements
// watcher.Sink and watcher.StatusSink; a client that cannot keep up is
// disconnected rather than slowing down the caller.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*hubClient
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkLocalOrigin,
		},
		clients: make(map[string]*hubClient),
	}
}

// checkLocalOrigin accepts requests without an Origin and from loopback or
// embedded app pages.
func checkLocalOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "tauri", "app":
		return true
	case "http", "https":
		host := u.Hostname()
		return host == "localhost" || net.ParseIP(host).IsLoopback()
	}
	return false
}

// OnChange broadcasts ev.
func (h *Hub) OnChange(ev watcher.ChangeEvent) {
	h.broadcast(ChangeMessage{
		Type:  ChangeMessageType,
		Kind:  ev.Kind,
		Path:  ev.Path,
		Path2: ev.Path2,
	})
}

// OnStatus broadcasts st.
func (h *Hub) OnStatus(st watcher.Status) {
	msg := StatusMessage{Type: StatusMessageType, State: st.State, Root: st.Root}
	if st.Err != nil {
		msg.Error = st.Err.Error()
	}
	h.broadcast(msg)
}

func (h *Hub) broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to encode websocket message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		select {
		case c.send <- data:
		default:
			slog.Warn("websocket client too slow, disconnecting", "client", id)
			h.removeLocked(c)
		}
	}
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &hubClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	slog.Debug("websocket client connected", "client", c.id)

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards client messages until the connection fails.
func (h *Hub) readLoop(c *hubClient) {
	defer h.remove(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "client", c.id, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *hubClient) {
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Debug("websocket write error", "client", c.id, "error", err)
			h.remove(c)
			// Drain until remove closes the channel.
			for range c.send {
			}
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) remove(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked unregisters c and closes its send channel. Must be called with mu held.
func (h *Hub) removeLocked(c *hubClient) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	close(c.send)
	slog.Debug("websocket client disconnected", "client", c.id)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		h.removeLocked(c)
	}
}
