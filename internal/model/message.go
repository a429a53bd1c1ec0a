package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message represents a direct message in MongoDB. Sender and receiver ids are
// user ObjectIDs in hex form. A message carries text, an image URL, or both;
// it is immutable once created except for the read flag.
type Message struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	SenderID   string             `json:"senderId" bson:"sender_id"`
	ReceiverID string             `json:"receiverId" bson:"receiver_id"`
	Text       string             `json:"text,omitempty" bson:"text,omitempty"`
	Image      string             `json:"image,omitempty" bson:"image,omitempty"`
	Read       bool               `json:"read" bson:"read"`
	CreatedAt  time.Time          `json:"createdAt" bson:"created_at"`
}

// ErrorPayload is an error response sent to a client over the WebSocket.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
