package hub

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/divverma2003/chat-with-me/internal/event"
)

var (
	// tuning parameters
	writeWait      = 10 * time.Second    // time allowed to write a message to the peer
	pongWait       = 20 * time.Second    // time allowed to read the next pong message from the peer
	pingInterval   = (pongWait * 9) / 10 // send pings to peer with this period
	maxMessageSize = 4 * 1024            // max inbound frame size; clients only send control traffic
	sendBufSize    = 256                 // per-connection outbound buffer size
)

// Client is one live WebSocket connection. The server pushes events through
// the egress channel; inbound frames are read only to service control frames
// and to detect disconnects, since all client actions arrive over HTTP.
type Client struct {
	ID     string
	userID string
	conn   *websocket.Conn
	hub    *Hub
	logger *zap.Logger

	egress chan event.WsEvent

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// registerClient attaches a new client to the hub and starts its pumps.
func registerClient(userID string, conn *websocket.Conn, h *Hub) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		ID:     uuid.New().String(),
		userID: userID,
		conn:   conn,
		hub:    h,
		logger: h.logger,
		egress: make(chan event.WsEvent, sendBufSize),
		ctx:    ctx,
		cancel: cancel,
	}

	h.Attach(c.ID, userID, c)
	go c.readMessages()
	go c.writeMessages()
	return c
}

// readMessages drains the connection until it errors or closes. The deferred
// Detach is the guaranteed-cleanup path: it runs for client-initiated closes,
// network failures, and server shutdown alike.
func (c *Client) readMessages() {
	defer func() {
		c.hub.Detach(c.ID)
		c.Close()
	}()

	c.conn.SetReadLimit(int64(maxMessageSize))
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				c.logger.Info("client disconnected", zap.String("conn_id", c.ID))
				return
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				c.logger.Info("client timed out", zap.String("conn_id", c.ID))
				return
			}
			c.logger.Warn("read error", zap.String("conn_id", c.ID), zap.Error(err))
			return
		}
		// inbound payloads are ignored
	}
}

func (c *Client) writeMessages() {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.egress:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.logger.Warn("write error", zap.String("conn_id", c.ID), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("ping error", zap.String("conn_id", c.ID), zap.Error(err))
				return
			}
		}
	}
}

// Deliver enqueues an event without blocking. A full buffer drops the event:
// the durable store is the recovery path for messages, and a later presence
// snapshot supersedes a dropped one.
func (c *Client) Deliver(ev event.WsEvent) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}

	select {
	case c.egress <- ev:
		return true
	default:
		return false
	}
}

// Close tears the connection down. Safe to call multiple times.
func (c *Client) Close() {
	c.once.Do(func() {
		c.cancel()
		_ = c.conn.Close()
	})
}
