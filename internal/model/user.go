package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user document in MongoDB. Password holds the bcrypt hash
// and is never serialized to clients.
type User struct {
	ID                       primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FullName                 string             `json:"fullName" bson:"full_name"`
	Email                    string             `json:"email" bson:"email"`
	Password                 string             `json:"-" bson:"password"`
	ProfilePic               string             `json:"profilePic" bson:"profile_pic"`
	IsVerified               bool               `json:"isVerified" bson:"is_verified"`
	VerificationToken        string             `json:"-" bson:"verification_token,omitempty"`
	VerificationTokenExpires *time.Time         `json:"-" bson:"verification_token_expires,omitempty"`
	CreatedAt                time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt                time.Time          `json:"updatedAt" bson:"updated_at"`
}

// Peer is a sidebar entry: another user plus the time of the most recent
// message exchanged with them. LastMessageAt is the zero time when no message
// has ever been exchanged, which sorts such peers after everyone else.
type Peer struct {
	User          User      `json:"user"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}
