package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/divverma2003/chat-with-me/internal/db"
	"github.com/divverma2003/chat-with-me/internal/model"
)

var (
	ErrInvalidMessage = errors.New("invalid message: message cannot be nil")
	ErrMissingParty   = errors.New("invalid message: sender and receiver are required")
)

const (
	defaultWriteTimeout = 5 * time.Second
	defaultReadTimeout  = 30 * time.Second
)

// MessageRepository is the durable message store. Messages are append-only;
// the only mutation is flipping the read flag.
type MessageRepository interface {
	Insert(ctx context.Context, msg *model.Message) (*model.Message, error)
	Conversation(ctx context.Context, userA, userB string) ([]model.Message, error)
	LastMessageTimes(ctx context.Context, userID string) (map[string]time.Time, error)
	UnreadCounts(ctx context.Context, userID string) (map[string]int64, error)
	MarkRead(ctx context.Context, readerID, peerID string) error
}

type messageRepository struct {
	mongoRepo *db.Repository[model.Message]
	logger    *zap.Logger
}

// NewMessageRepository creates a Mongo-backed MessageRepository.
func NewMessageRepository(repo *db.Repository[model.Message], logger *zap.Logger) MessageRepository {
	return &messageRepository{
		mongoRepo: repo,
		logger:    logger,
	}
}

func (m *messageRepository) Insert(ctx context.Context, msg *model.Message) (*model.Message, error) {
	if msg == nil {
		return nil, ErrInvalidMessage
	}
	if msg.SenderID == "" || msg.ReceiverID == "" {
		return nil, ErrMissingParty
	}

	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	result, err := m.mongoRepo.Create(ctx, *msg)
	if err != nil {
		m.logger.Error("failed to insert message",
			zap.String("sender_id", msg.SenderID),
			zap.String("receiver_id", msg.ReceiverID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("insert message failed: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid
	}

	m.logger.Info("message inserted",
		zap.String("message_id", msg.ID.Hex()),
		zap.String("sender_id", msg.SenderID),
		zap.String("receiver_id", msg.ReceiverID),
	)
	return msg, nil
}

// Conversation returns every message exchanged between the two users, in
// creation order. The filter covers both directions, so the result is the
// same whichever of the two asks.
func (m *messageRepository) Conversation(ctx context.Context, userA, userB string) ([]model.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().Or(
		db.NewFilter().Eq("sender_id", userA).Eq("receiver_id", userB).Build(),
		db.NewFilter().Eq("sender_id", userB).Eq("receiver_id", userA).Build(),
	).Build()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	msgs, err := m.mongoRepo.FindAll(ctx, filter, opts)
	if err != nil {
		m.logger.Error("failed to query conversation",
			zap.String("user_a", userA),
			zap.String("user_b", userB),
			zap.Error(err),
		)
		return nil, fmt.Errorf("query conversation failed: %w", err)
	}
	return msgs, nil
}

// LastMessageTimes returns, for every peer the user has exchanged messages
// with, the creation time of the latest message in either direction.
func (m *messageRepository) LastMessageTimes(ctx context.Context, userID string) (map[string]time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultReadTimeout)
	defer cancel()

	pipeline := []bson.M{
		{"$match": bson.M{"$or": bson.A{
			bson.M{"sender_id": userID},
			bson.M{"receiver_id": userID},
		}}},
		{"$project": bson.M{
			"created_at": 1,
			"peer": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$sender_id", userID}},
				"$receiver_id",
				"$sender_id",
			}},
		}},
		{"$group": bson.M{
			"_id":  "$peer",
			"last": bson.M{"$max": "$created_at"},
		}},
	}

	cursor, err := m.mongoRepo.Collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate last message times failed: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Peer string    `bson:"_id"`
		Last time.Time `bson:"last"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode last message times failed: %w", err)
	}

	times := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		times[row.Peer] = row.Last
	}
	return times, nil
}

// UnreadCounts returns, per sender, how many messages addressed to the user
// are still unread.
func (m *messageRepository) UnreadCounts(ctx context.Context, userID string) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultReadTimeout)
	defer cancel()

	pipeline := []bson.M{
		{"$match": bson.M{"receiver_id": userID, "read": false}},
		{"$group": bson.M{"_id": "$sender_id", "count": bson.M{"$sum": 1}}},
	}

	cursor, err := m.mongoRepo.Collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate unread counts failed: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Sender string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode unread counts failed: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Sender] = row.Count
	}
	return counts, nil
}

// MarkRead flips the read flag on every unread message from peerID to
// readerID.
func (m *messageRepository) MarkRead(ctx context.Context, readerID, peerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("sender_id", peerID).
		Eq("receiver_id", readerID).
		Eq("read", false).
		Build()

	_, err := m.mongoRepo.UpdateMany(ctx, filter, bson.M{"read": true})
	if err != nil {
		return fmt.Errorf("mark read failed: %w", err)
	}
	return nil
}
