package event

import "encoding/json"

const (
	// EventPresenceUpdate carries the full set of online user ids. It is sent
	// to every bound connection whenever a binding changes.
	EventPresenceUpdate = "presence-update"

	// EventMessageDelivered carries a persisted message and is sent only to
	// the receiver's bound connection.
	EventMessageDelivered = "message-delivered"
)

// WsEvent is the envelope for everything pushed over a WebSocket connection.
type WsEvent struct {
	Event   string          `json:"event"`
	Message json.RawMessage `json:"message"`
}

// PresencePayload is the message body of a presence-update event.
type PresencePayload struct {
	OnlineUserIDs []string `json:"onlineUserIds"`
}

// PresenceUpdate builds a presence-update event from a directory snapshot.
func PresenceUpdate(onlineUserIDs []string) (WsEvent, error) {
	body, err := json.Marshal(PresencePayload{OnlineUserIDs: onlineUserIDs})
	if err != nil {
		return WsEvent{}, err
	}
	return WsEvent{Event: EventPresenceUpdate, Message: body}, nil
}

// MessageDelivered wraps a persisted message for live push to its receiver.
func MessageDelivered(msg any) (WsEvent, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return WsEvent{}, err
	}
	return WsEvent{Event: EventMessageDelivered, Message: body}, nil
}
