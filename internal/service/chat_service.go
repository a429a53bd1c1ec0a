package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/divverma2003/chat-with-me/internal/media"
	"github.com/divverma2003/chat-with-me/internal/model"
	"github.com/divverma2003/chat-with-me/internal/repo"
)

// Deliverer is the live-push side of message delivery. Route is called after
// the message is durable and must not block or fail the send.
type Deliverer interface {
	Route(msg *model.Message)
}

// ChatService is the conversation access layer: every read and write is
// scoped to the requesting user, who is always one of the two parties.
type ChatService interface {
	ListPeers(ctx context.Context, requesterID string) ([]model.Peer, error)
	History(ctx context.Context, requesterID, peerID string) ([]model.Message, error)
	Send(ctx context.Context, senderID, receiverID, text, imageDataURI string) (*model.Message, error)
	UnreadCounts(ctx context.Context, requesterID string) (map[string]int64, error)
}

type chatService struct {
	users     repo.UserRepository
	messages  repo.MessageRepository
	media     media.Store
	deliverer Deliverer
	logger    *zap.Logger
}

// NewChatService wires the conversation access layer.
func NewChatService(
	users repo.UserRepository,
	messages repo.MessageRepository,
	mediaStore media.Store,
	deliverer Deliverer,
	logger *zap.Logger,
) ChatService {
	return &chatService{
		users:     users,
		messages:  messages,
		media:     mediaStore,
		deliverer: deliverer,
		logger:    logger,
	}
}

// ListPeers returns every other user for the sidebar, ordered by the most
// recently exchanged message. Users the requester has never talked to carry
// the zero time and sort last.
func (s *chatService) ListPeers(ctx context.Context, requesterID string) ([]model.Peer, error) {
	users, err := s.users.FindAllExcept(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list peers: %w", err)
	}

	lastTimes, err := s.messages.LastMessageTimes(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list peers: %w", err)
	}

	peers := make([]model.Peer, 0, len(users))
	for _, u := range users {
		peers = append(peers, model.Peer{
			User:          u,
			LastMessageAt: lastTimes[u.ID.Hex()],
		})
	}

	sort.SliceStable(peers, func(i, j int) bool {
		return peers[i].LastMessageAt.After(peers[j].LastMessageAt)
	})
	return peers, nil
}

// History returns the full two-party conversation in creation order and marks
// the peer's messages to the requester as read.
func (s *chatService) History(ctx context.Context, requesterID, peerID string) ([]model.Message, error) {
	msgs, err := s.messages.Conversation(ctx, requesterID, peerID)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	if err := s.messages.MarkRead(ctx, requesterID, peerID); err != nil {
		// The fetch already succeeded; stale unread counts fix themselves on
		// the next fetch.
		s.logger.Warn("failed to mark messages read",
			zap.String("requester_id", requesterID),
			zap.String("peer_id", peerID),
			zap.Error(err),
		)
	}
	return msgs, nil
}

// Send validates, stores any attached image, persists the message, and hands
// it to the delivery router. The persisted message is returned regardless of
// whether the live push lands; if persistence fails nothing is pushed.
func (s *chatService) Send(ctx context.Context, senderID, receiverID, text, imageDataURI string) (*model.Message, error) {
	if text == "" && imageDataURI == "" {
		return nil, ErrEmptyMessage
	}

	var imageURL string
	if imageDataURI != "" {
		data, contentType, err := media.DecodeDataURI(imageDataURI)
		if err != nil {
			return nil, fmt.Errorf("send: %w", err)
		}
		imageURL, err = s.media.Save(ctx, data, contentType)
		if err != nil {
			return nil, fmt.Errorf("send: store image: %w", err)
		}
	}

	msg := &model.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Image:      imageURL,
		Read:       false,
		CreatedAt:  time.Now(),
	}

	persisted, err := s.messages.Insert(ctx, msg)
	if err != nil {
		return nil, err
	}

	s.deliverer.Route(persisted)
	return persisted, nil
}

// UnreadCounts returns, per peer, how many of their messages to the requester
// are unread.
func (s *chatService) UnreadCounts(ctx context.Context, requesterID string) (map[string]int64, error) {
	counts, err := s.messages.UnreadCounts(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("unread counts: %w", err)
	}
	return counts, nil
}
