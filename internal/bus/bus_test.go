package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("room.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindRoomCreated, Payload: "r1"})

	select {
	case evt := <-ch:
		if evt.Kind != KindRoomCreated {
			t.Errorf("got kind %q, want %s", evt.Kind, KindRoomCreated)
		}
		if evt.ID == "" {
			t.Error("event ID should be assigned on publish")
		}
		if evt.Timestamp.IsZero() {
			t.Error("event timestamp should be assigned on publish")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("message.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindRoomDeleted})
	b.Publish(Event{Kind: KindMessageAppended})

	select {
	case evt := <-ch:
		if evt.Kind != KindMessageAppended {
			t.Errorf("got kind %q, want %s", evt.Kind, KindMessageAppended)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	// The room event must not have been delivered.
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEmptyNamespaceMatchesAll(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("", 10)
	defer unsub()

	b.Publish(Event{Kind: KindStoreHydrated})
	b.Publish(Event{Kind: KindStatusChanged})

	for _, want := range []string{KindStoreHydrated, KindStatusChanged} {
		select {
		case evt := <-ch:
			if evt.Kind != want {
				t.Errorf("got kind %q, want %q", evt.Kind, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %s", want)
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("room.", 10)
	unsub()
	unsub() // second call is harmless

	b.Publish(Event{Kind: KindRoomCreated})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("room.", 1)
	defer unsub()

	b.Publish(Event{Kind: KindRoomCreated})
	// Dropped: buffer is full.
	b.Publish(Event{Kind: KindRoomRenamed})

	evt := <-ch
	if evt.Kind != KindRoomCreated {
		t.Errorf("got %q, want %s", evt.Kind, KindRoomCreated)
	}
}

func TestPublishOnNilBus(t *testing.T) {
	var b *Bus
	b.Publish(Event{Kind: KindRoomCreated})
}
