package service

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/divverma2003/chat-with-me/internal/delivery"
	"github.com/divverma2003/chat-with-me/internal/directory"
	"github.com/divverma2003/chat-with-me/internal/event"
	"github.com/divverma2003/chat-with-me/internal/hub"
	"github.com/divverma2003/chat-with-me/internal/model"
)

type recordingSink struct {
	events []event.WsEvent
}

func (r *recordingSink) Deliver(ev event.WsEvent) bool {
	r.events = append(r.events, ev)
	return true
}

func (r *recordingSink) Close() {}

func (r *recordingSink) lastOf(t *testing.T, kind string) json.RawMessage {
	t.Helper()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Event == kind {
			return r.events[i].Message
		}
	}
	t.Fatalf("no %s event received", kind)
	return nil
}

// Full connect/send/disconnect flow through the real directory, hub, and
// router, with fake connection sinks and an in-memory durable store.
func TestConnectSendDisconnectScenario(t *testing.T) {
	ctx := context.Background()

	dir := directory.New()
	h := hub.NewHub(dir, nil, zap.NewNop())
	router := delivery.NewRouter(dir, h, zap.NewNop())

	users := newFakeUserRepo()
	msgs := &fakeMessageRepo{}
	svc := NewChatService(users, msgs, &fakeMediaStore{}, router, zap.NewNop())

	// u1 and u2 connect; both see the full online set.
	s1 := &recordingSink{}
	s2 := &recordingSink{}
	h.Attach("c1", "u1", s1)
	h.Attach("c2", "u2", s2)

	for _, s := range []*recordingSink{s1, s2} {
		var p event.PresencePayload
		if err := json.Unmarshal(s.lastOf(t, event.EventPresenceUpdate), &p); err != nil {
			t.Fatalf("bad presence payload: %v", err)
		}
		if !reflect.DeepEqual(p.OnlineUserIDs, []string{"u1", "u2"}) {
			t.Fatalf("presence = %v; want [u1 u2]", p.OnlineUserIDs)
		}
	}

	// u1 sends; u2's connection receives it live and the sender gets a
	// persisted message back.
	sent, err := svc.Send(ctx, "u1", "u2", "hi", "")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent.ID.IsZero() {
		t.Fatal("send did not return a server-assigned id")
	}

	var delivered model.Message
	if err := json.Unmarshal(s2.lastOf(t, event.EventMessageDelivered), &delivered); err != nil {
		t.Fatalf("bad delivery payload: %v", err)
	}
	if delivered.Text != "hi" || delivered.SenderID != "u1" {
		t.Fatalf("delivered = %+v; want text hi from u1", delivered)
	}

	// u2 disconnects; u1 sees the shrunken online set.
	h.Detach("c2")
	var p event.PresencePayload
	if err := json.Unmarshal(s1.lastOf(t, event.EventPresenceUpdate), &p); err != nil {
		t.Fatalf("bad presence payload: %v", err)
	}
	if !reflect.DeepEqual(p.OnlineUserIDs, []string{"u1"}) {
		t.Fatalf("presence after disconnect = %v; want [u1]", p.OnlineUserIDs)
	}

	// Offline send: durable append only, no live push.
	before := len(s2.events)
	if _, err := svc.Send(ctx, "u1", "u2", "are you there?", ""); err != nil {
		t.Fatalf("Send offline: %v", err)
	}
	if len(s2.events) != before {
		t.Fatal("offline receiver got a live push")
	}

	// History still returns everything, offline or not.
	history, err := svc.History(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history = %d messages; want 2", len(history))
	}
	if history[0].Text != "hi" {
		t.Fatalf("history[0] = %q; want hi", history[0].Text)
	}
}
