// Package hub manages live WebSocket connections: it keeps the registry of
// connection handles, binds authenticated connections into the session
// directory, and announces the online set to every bound connection whenever
// a binding changes.
package hub

import (
	"net/http"
	"time"

	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/divverma2003/chat-with-me/internal/directory"
	"github.com/divverma2003/chat-with-me/internal/event"
)

// Sink is the write side of one live connection. Deliver is best-effort and
// must never block: it reports false when the event was dropped (slow client,
// closed connection). Close tears the connection down.
type Sink interface {
	Deliver(ev event.WsEvent) bool
	Close()
}

type session struct {
	connID      string
	userID      string // empty for anonymous connections
	sink        Sink
	connectedAt time.Time
}

// Hub owns the session registry and the directory of user bindings. All
// binding mutations and the presence announcements they trigger happen under
// one mutex, so every client observes a monotonically consistent sequence of
// snapshots even when connects and disconnects race.
type Hub struct {
	mu       sync.Mutex
	dir      *directory.Directory
	sessions map[string]*session

	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub creates a hub around the given directory. allowedOrigins is the set
// of Origin header values accepted for WebSocket upgrades; empty means any.
func NewHub(dir *directory.Directory, allowedOrigins []string, logger *zap.Logger) *Hub {
	h := &Hub{
		dir:      dir,
		sessions: make(map[string]*session),
		logger:   logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
	return h
}

// Attach registers a connection and, when it carries a user identity, binds
// it in the directory and announces the updated online set. An empty userID
// attaches an anonymous connection: accepted, never bound, no presence.
func (h *Hub) Attach(connID, userID string, s Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[connID] = &session{
		connID:      connID,
		userID:      userID,
		sink:        s,
		connectedAt: time.Now(),
	}

	if userID == "" {
		h.logger.Info("anonymous connection attached", zap.String("conn_id", connID))
		return
	}

	h.dir.Bind(userID, connID)
	h.logger.Info("connection bound",
		zap.String("conn_id", connID),
		zap.String("user_id", userID),
	)
	h.announceLocked()
}

// Detach unbinds and removes a connection. It is safe to call for unknown or
// already-detached connection ids; disconnect paths call it unconditionally.
func (h *Hub) Detach(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[connID]
	if !ok {
		return
	}
	delete(h.sessions, connID)
	h.dir.Unbind(connID)

	h.logger.Info("connection detached",
		zap.String("conn_id", connID),
		zap.String("user_id", s.userID),
	)
	if s.userID != "" {
		h.announceLocked()
	}
}

// PushTo delivers a single event to the given connection, best-effort.
// Returns false when the connection is gone or its buffer is full.
func (h *Hub) PushTo(connID string, ev event.WsEvent) bool {
	h.mu.Lock()
	s, ok := h.sessions[connID]
	h.mu.Unlock()

	if !ok {
		return false
	}
	return s.sink.Deliver(ev)
}

// announceLocked pushes the current online snapshot to every bound
// connection. Callers hold h.mu, which serializes announcements in the order
// the triggering bind/unbind calls were processed. Delivery per connection is
// fire-and-forget: a slow client misses intermediate snapshots, never sees an
// older one after a newer one.
func (h *Hub) announceLocked() {
	ev, err := event.PresenceUpdate(h.dir.Snapshot())
	if err != nil {
		h.logger.Error("failed to build presence update", zap.Error(err))
		return
	}

	for _, s := range h.sessions {
		if s.userID == "" {
			continue
		}
		if !s.sink.Deliver(ev) {
			h.logger.Debug("presence update dropped",
				zap.String("conn_id", s.connID),
				zap.String("user_id", s.userID),
			)
		}
	}
}

// Stop closes every live connection. Each connection's read loop then runs
// its usual teardown, so the directory empties through the normal path.
func (h *Hub) Stop() {
	h.mu.Lock()
	sinks := make([]Sink, 0, len(h.sessions))
	for _, s := range h.sessions {
		sinks = append(sinks, s.sink)
	}
	h.mu.Unlock()

	for _, s := range sinks {
		s.Close()
	}
}

// ServeWS upgrades an HTTP request to a WebSocket connection and attaches it.
// userID is the identity resolved from the handshake credentials; empty means
// the connection stays anonymous.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	registerClient(userID, conn, h)
}
