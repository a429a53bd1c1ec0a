package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/divverma2003/chat-with-me/internal/model"
	"github.com/divverma2003/chat-with-me/internal/repo"
)

// ---------------------------------------------------------------------------
// in-memory fakes
// ---------------------------------------------------------------------------

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // hex id -> user
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) add(fullName, email string) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &model.User{ID: primitive.NewObjectID(), FullName: fullName, Email: email}
	f.users[u.ID.Hex()] = u
	return u
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = primitive.NewObjectID()
	u := *user
	f.users[u.ID.Hex()] = &u
	return &u, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) FindAllExcept(_ context.Context, id string) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for k, u := range f.users {
		if k != id {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (f *fakeUserRepo) FindByVerificationToken(_ context.Context, token string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.VerificationToken == token && u.VerificationTokenExpires != nil &&
			u.VerificationTokenExpires.After(time.Now()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeUserRepo) UpdateProfilePic(_ context.Context, id, url string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	u.ProfilePic = url
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) SetVerified(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.IsVerified = true
		u.VerificationToken = ""
		u.VerificationTokenExpires = nil
	}
	return nil
}

func (f *fakeUserRepo) SetVerificationToken(_ context.Context, id, token string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.VerificationToken = token
		u.VerificationTokenExpires = &expires
	}
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

type fakeMessageRepo struct {
	mu         sync.Mutex
	messages   []model.Message
	failInsert bool
}

func (f *fakeMessageRepo) Insert(_ context.Context, msg *model.Message) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return nil, errors.New("store unavailable")
	}
	msg.ID = primitive.NewObjectID()
	f.messages = append(f.messages, *msg)
	return msg, nil
}

func (f *fakeMessageRepo) Conversation(_ context.Context, a, b string) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Message
	for _, m := range f.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeMessageRepo) LastMessageTimes(_ context.Context, userID string) (map[string]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	times := make(map[string]time.Time)
	for _, m := range f.messages {
		var peer string
		switch userID {
		case m.SenderID:
			peer = m.ReceiverID
		case m.ReceiverID:
			peer = m.SenderID
		default:
			continue
		}
		if m.CreatedAt.After(times[peer]) {
			times[peer] = m.CreatedAt
		}
	}
	return times, nil
}

func (f *fakeMessageRepo) UnreadCounts(_ context.Context, userID string) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int64)
	for _, m := range f.messages {
		if m.ReceiverID == userID && !m.Read {
			counts[m.SenderID]++
		}
	}
	return counts, nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, readerID, peerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].SenderID == peerID && f.messages[i].ReceiverID == readerID {
			f.messages[i].Read = true
		}
	}
	return nil
}

type fakeMediaStore struct {
	saves   int
	removed []string
	fail    bool
}

func (f *fakeMediaStore) Save(_ context.Context, data []byte, contentType string) (string, error) {
	if f.fail {
		return "", errors.New("upload failed")
	}
	f.saves++
	ext := ".bin"
	if strings.HasPrefix(contentType, "image/") {
		ext = "." + strings.TrimPrefix(contentType, "image/")
	}
	return "/uploads/blob" + ext, nil
}

func (f *fakeMediaStore) Remove(_ context.Context, url string) error {
	f.removed = append(f.removed, url)
	return nil
}

type fakeDeliverer struct {
	routed []*model.Message
}

func (f *fakeDeliverer) Route(msg *model.Message) { f.routed = append(f.routed, msg) }

func newChatFixture() (*fakeUserRepo, *fakeMessageRepo, *fakeMediaStore, *fakeDeliverer, ChatService) {
	users := newFakeUserRepo()
	msgs := &fakeMessageRepo{}
	blobs := &fakeMediaStore{}
	del := &fakeDeliverer{}
	svc := NewChatService(users, msgs, blobs, del, zap.NewNop())
	return users, msgs, blobs, del, svc
}

// ---------------------------------------------------------------------------
// tests
// ---------------------------------------------------------------------------

func TestSendPersistsAndRoutes(t *testing.T) {
	_, msgs, _, del, svc := newChatFixture()

	got, err := svc.Send(context.Background(), "u1", "u2", "hi", "")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.ID.IsZero() {
		t.Fatal("returned message has no server-assigned id")
	}
	if len(msgs.messages) != 1 {
		t.Fatalf("appends = %d; want exactly 1", len(msgs.messages))
	}
	if len(del.routed) != 1 || del.routed[0].Text != "hi" {
		t.Fatalf("routed = %+v; want the persisted message, once", del.routed)
	}
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	_, msgs, _, del, svc := newChatFixture()

	if _, err := svc.Send(context.Background(), "u1", "u2", "", ""); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("err = %v; want ErrEmptyMessage", err)
	}
	if len(msgs.messages) != 0 || len(del.routed) != 0 {
		t.Fatal("validation failure must not mutate state")
	}
}

func TestSendStoresImageFirst(t *testing.T) {
	_, msgs, blobs, _, svc := newChatFixture()

	got, err := svc.Send(context.Background(), "u1", "u2", "", "data:image/png;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if blobs.saves != 1 {
		t.Fatalf("media saves = %d; want 1", blobs.saves)
	}
	if got.Image != "/uploads/blob.png" {
		t.Fatalf("Image = %q; want stored URL", got.Image)
	}
	if msgs.messages[0].Image != got.Image {
		t.Fatal("persisted message missing image URL")
	}
}

func TestSendMediaFailureLeavesNoState(t *testing.T) {
	_, msgs, blobs, del, svc := newChatFixture()
	blobs.fail = true

	if _, err := svc.Send(context.Background(), "u1", "u2", "", "data:image/png;base64,aGVsbG8="); err == nil {
		t.Fatal("expected error from media failure")
	}
	if len(msgs.messages) != 0 || len(del.routed) != 0 {
		t.Fatal("media failure must leave no partial state")
	}
}

func TestSendPersistFailureSkipsPush(t *testing.T) {
	_, msgs, _, del, svc := newChatFixture()
	msgs.failInsert = true

	if _, err := svc.Send(context.Background(), "u1", "u2", "hi", ""); err == nil {
		t.Fatal("expected error from store failure")
	}
	if len(del.routed) != 0 {
		t.Fatal("no live push may happen when persistence fails")
	}
}

func TestHistorySymmetricAndIsolated(t *testing.T) {
	_, _, _, _, svc := newChatFixture()
	ctx := context.Background()

	if _, err := svc.Send(ctx, "a", "b", "one", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := svc.Send(ctx, "b", "a", "two", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := svc.Send(ctx, "c", "d", "other", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}

	fromA, err := svc.History(ctx, "a", "b")
	if err != nil {
		t.Fatalf("History(a,b): %v", err)
	}
	fromB, err := svc.History(ctx, "b", "a")
	if err != nil {
		t.Fatalf("History(b,a): %v", err)
	}

	if len(fromA) != 2 || len(fromB) != 2 {
		t.Fatalf("history lengths = %d/%d; want 2/2", len(fromA), len(fromB))
	}
	for i := range fromA {
		if fromA[i].ID != fromB[i].ID {
			t.Fatal("history differs depending on which party asks")
		}
	}
	for _, m := range fromA {
		if m.SenderID == "c" || m.ReceiverID == "d" {
			t.Fatal("history leaked messages from an unrelated conversation")
		}
	}
	if fromA[0].Text != "one" || fromA[1].Text != "two" {
		t.Fatalf("history out of creation order: %q, %q", fromA[0].Text, fromA[1].Text)
	}
}

func TestHistoryMarksRead(t *testing.T) {
	_, msgs, _, _, svc := newChatFixture()
	ctx := context.Background()

	if _, err := svc.Send(ctx, "a", "b", "hello", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}

	counts, err := svc.UnreadCounts(ctx, "b")
	if err != nil {
		t.Fatalf("UnreadCounts: %v", err)
	}
	if counts["a"] != 1 {
		t.Fatalf("unread from a = %d; want 1", counts["a"])
	}

	if _, err := svc.History(ctx, "b", "a"); err != nil {
		t.Fatalf("History: %v", err)
	}
	counts, err = svc.UnreadCounts(ctx, "b")
	if err != nil {
		t.Fatalf("UnreadCounts: %v", err)
	}
	if counts["a"] != 0 {
		t.Fatalf("unread from a after history = %d; want 0", counts["a"])
	}
	if !msgs.messages[0].Read {
		t.Fatal("message not flagged read")
	}
}

func TestListPeersOrdering(t *testing.T) {
	users, msgs, _, _, svc := newChatFixture()
	ctx := context.Background()

	me := users.add("Me", "me@example.com")
	x := users.add("X", "x@example.com")
	y := users.add("Y", "y@example.com")
	z := users.add("Z", "z@example.com")

	now := time.Now()
	msgs.messages = append(msgs.messages,
		model.Message{ID: primitive.NewObjectID(), SenderID: me.ID.Hex(), ReceiverID: x.ID.Hex(), Text: "old", CreatedAt: now.Add(-5 * time.Minute)},
		model.Message{ID: primitive.NewObjectID(), SenderID: y.ID.Hex(), ReceiverID: me.ID.Hex(), Text: "recent", CreatedAt: now.Add(-1 * time.Minute)},
	)

	peers, err := svc.ListPeers(ctx, me.ID.Hex())
	if err != nil {
		t.Fatalf("ListPeers: %v", err)
	}
	if len(peers) != 3 {
		t.Fatalf("peers = %d; want 3", len(peers))
	}

	wantOrder := []string{y.ID.Hex(), x.ID.Hex(), z.ID.Hex()}
	for i, want := range wantOrder {
		if got := peers[i].User.ID.Hex(); got != want {
			t.Fatalf("peer[%d] = %s; want %s (order Y, X, Z)", i, got, want)
		}
	}
	if !peers[2].LastMessageAt.IsZero() {
		t.Fatal("peer with no history must carry the zero sentinel time")
	}
}
