package bus

import (
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return Event{}
	}
}

func assertQuiet(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case evt := <-ch:
		t.Errorf("unexpected event %q", evt.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPrefixSubscription(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("wa.", 10)
	defer unsub()

	// The sync engine subscribes to "wa." and must not see lifecycle
	// traffic published under "session.".
	b.Publish(Event{Kind: KindStatusChanged, Timestamp: time.Now()})
	b.Publish(Event{Kind: KindLiveMessage, Timestamp: time.Now(), Payload: "msg"})

	evt := recv(t, ch)
	if evt.Kind != KindLiveMessage {
		t.Errorf("kind = %q, want %q", evt.Kind, KindLiveMessage)
	}
	if evt.Payload != "msg" {
		t.Errorf("payload = %v, want msg", evt.Payload)
	}
	assertQuiet(t, ch)
}

func TestIndependentSubscribers(t *testing.T) {
	b := New()
	sessionCh, unsub1 := b.Subscribe("session.", 10)
	defer unsub1()
	waCh, unsub2 := b.Subscribe("wa.", 10)
	defer unsub2()

	b.Publish(Event{Kind: KindQRGenerated})
	b.Publish(Event{Kind: KindHistoryBatch})

	if evt := recv(t, sessionCh); evt.Kind != KindQRGenerated {
		t.Errorf("session subscriber got %q", evt.Kind)
	}
	if evt := recv(t, waCh); evt.Kind != KindHistoryBatch {
		t.Errorf("wa subscriber got %q", evt.Kind)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("session.", 10)
	unsub()

	b.Publish(Event{Kind: KindStatusChanged})
	assertQuiet(t, ch)
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("wa.", 1)
	defer unsub()

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Publish(Event{Kind: KindConnected})
		// Buffer is full now; the overflow event is dropped, not queued.
		b.Publish(Event{Kind: KindDisconnected})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	if evt := recv(t, ch); evt.Kind != KindConnected {
		t.Errorf("kind = %q, want %q", evt.Kind, KindConnected)
	}
	assertQuiet(t, ch)
}
