// Package delivery routes persisted messages to their receiver's live
// connection, when there is one.
package delivery

import (
	"go.uber.org/zap"

	"github.com/divverma2003/chat-with-me/internal/directory"
	"github.com/divverma2003/chat-with-me/internal/event"
	"github.com/divverma2003/chat-with-me/internal/model"
)

// Pusher pushes a single event to one connection, best-effort.
type Pusher interface {
	PushTo(connID string, ev event.WsEvent) bool
}

// Router performs the live-push half of message delivery. By the time Route
// is called the message is already durable, so a failed or skipped push loses
// nothing: the receiver picks the message up from history on next fetch.
type Router struct {
	dir    *directory.Directory
	pusher Pusher
	logger *zap.Logger
}

// NewRouter creates a router over the given directory and pusher.
func NewRouter(dir *directory.Directory, pusher Pusher, logger *zap.Logger) *Router {
	return &Router{dir: dir, pusher: pusher, logger: logger}
}

// Route pushes msg to the receiver's bound connection if one exists. It never
// blocks on the network and never retries; an offline receiver is a no-op.
func (r *Router) Route(msg *model.Message) {
	connID, ok := r.dir.Lookup(msg.ReceiverID)
	if !ok {
		return
	}

	ev, err := event.MessageDelivered(msg)
	if err != nil {
		r.logger.Error("failed to encode message event",
			zap.String("message_id", msg.ID.Hex()),
			zap.Error(err),
		)
		return
	}

	if !r.pusher.PushTo(connID, ev) {
		// The connection closed between lookup and push, or the client is too
		// slow. The durable copy covers it.
		r.logger.Debug("live push dropped",
			zap.String("message_id", msg.ID.Hex()),
			zap.String("receiver_id", msg.ReceiverID),
		)
	}
}
