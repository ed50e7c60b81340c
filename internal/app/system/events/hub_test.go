package events

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHub_RoutesToMembersOnly(t *testing.T) {
	hub := NewHub()
	member := primitive.NewObjectID()
	outsider := primitive.NewObjectID()

	memberID, memberCh := hub.Subscribe(member)
	outsiderID, outsiderCh := hub.Subscribe(outsider)
	defer hub.Unsubscribe(memberID)
	defer hub.Unsubscribe(outsiderID)

	hub.Publish(Event{
		Kind:      TaskChanged,
		ProjectID: primitive.NewObjectID(),
		Members:   []primitive.ObjectID{member},
	})

	select {
	case ev := <-memberCh:
		if ev.Kind != TaskChanged {
			t.Errorf("kind: got %q, want task-changed", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("member never received the event")
	}

	select {
	case ev := <-outsiderCh:
		t.Fatalf("outsider received %q", ev.Kind)
	default:
	}
}

func TestHub_SlowSubscriberNeverBlocksPublish(t *testing.T) {
	hub := NewHub()
	user := primitive.NewObjectID()

	id, _ := hub.Subscribe(user)
	defer hub.Unsubscribe(id)

	// Nobody drains the channel; publishing past the buffer must not hang.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(Event{Kind: BoardChanged, Members: []primitive.ObjectID{user}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	id, ch := hub.Subscribe(primitive.NewObjectID())

	hub.Unsubscribe(id)

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel, got event")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after unsubscribe")
	}
}
