package wa

import (
	"testing"
	"time"

	"github.com/matheus3301/wppapi/internal/bus"
	"github.com/matheus3301/wppapi/internal/store"
	"go.mau.fi/whatsmeow/proto/waCommon"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/proto/waHistorySync"
	"go.mau.fi/whatsmeow/proto/waWeb"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
)

// testAdapter builds an adapter with just the event-handling fields set.
func testAdapter(b *bus.Bus) *Adapter {
	return &Adapter{
		bus:    b,
		logger: zap.NewNop(),
		ready:  make(chan struct{}),
	}
}

func TestHandleConnectedClosesReady(t *testing.T) {
	b := bus.New()
	a := testAdapter(b)

	select {
	case <-a.Ready():
		t.Fatal("ready closed before Connected event")
	default:
	}

	a.handleEvent(&events.Connected{})

	select {
	case <-a.Ready():
	default:
		t.Fatal("ready not closed after Connected event")
	}

	// Repeated Connected events must not panic on the closed channel.
	a.handleEvent(&events.Connected{})
}

func TestHandleMessagePublishes(t *testing.T) {
	b := bus.New()
	a := testAdapter(b)

	ch, unsub := b.Subscribe("wa.", 10)
	defer unsub()

	a.handleEvent(&events.Message{
		Info: types.MessageInfo{
			ID:        "m1",
			Timestamp: time.Now(),
			MessageSource: types.MessageSource{
				Chat:   types.JID{User: "c", Server: "s.whatsapp.net"},
				Sender: types.JID{User: "s", Server: "s.whatsapp.net"},
			},
		},
		Message: &waE2E.Message{Conversation: proto.String("hello")},
	})

	select {
	case evt := <-ch:
		if evt.Kind != bus.KindLiveMessage {
			t.Errorf("event kind = %q, want %q", evt.Kind, bus.KindLiveMessage)
		}
		msg, ok := evt.Payload.(*store.Message)
		if !ok {
			t.Fatal("payload is not *store.Message")
		}
		if msg.Body != "hello" {
			t.Errorf("Body = %q, want hello", msg.Body)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message event")
	}
}

func TestHandleHistorySync(t *testing.T) {
	b := bus.New()
	a := testAdapter(b)

	ch, unsub := b.Subscribe("wa.", 10)
	defer unsub()

	msgTS := uint64(time.Now().Unix())
	a.handleEvent(&events.HistorySync{
		Data: &waHistorySync.HistorySync{
			Conversations: []*waHistorySync.Conversation{
				{
					ID: proto.String("chat@g.us"),
					Messages: []*waHistorySync.HistorySyncMsg{
						{
							Message: &waWeb.WebMessageInfo{
								Key: &waCommon.MessageKey{
									ID:        proto.String("hm1"),
									FromMe:    proto.Bool(false),
									RemoteJID: proto.String("chat@g.us"),
								},
								MessageTimestamp: &msgTS,
								Message:          &waE2E.Message{Conversation: proto.String("history msg")},
							},
						},
					},
				},
			},
		},
	})

	select {
	case evt := <-ch:
		if evt.Kind != bus.KindHistoryBatch {
			t.Errorf("event kind = %q, want %q", evt.Kind, bus.KindHistoryBatch)
		}
		msgs, ok := evt.Payload.([]*store.Message)
		if !ok || len(msgs) != 1 {
			t.Fatalf("payload = %#v, want one *store.Message", evt.Payload)
		}
		if msgs[0].ChatJID != "chat@g.us" || msgs[0].Body != "history msg" {
			t.Errorf("unexpected message: %+v", msgs[0])
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for history batch event")
	}
}

func TestHandleHistorySyncNilData(t *testing.T) {
	b := bus.New()
	a := testAdapter(b)

	ch, unsub := b.Subscribe("wa.", 10)
	defer unsub()

	a.handleEvent(&events.HistorySync{Data: nil})

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandleLoggedOut(t *testing.T) {
	b := bus.New()
	a := testAdapter(b)

	ch, unsub := b.Subscribe("session.", 10)
	defer unsub()

	a.handleEvent(&events.LoggedOut{})

	select {
	case evt := <-ch:
		if evt.Kind != bus.KindLoggedOut {
			t.Errorf("event kind = %q, want %q", evt.Kind, bus.KindLoggedOut)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for logged-out event")
	}
}

func TestHandleDisconnected(t *testing.T) {
	b := bus.New()
	a := testAdapter(b)

	ch, unsub := b.Subscribe("wa.", 10)
	defer unsub()

	a.handleEvent(&events.Disconnected{})

	select {
	case evt := <-ch:
		if evt.Kind != bus.KindDisconnected {
			t.Errorf("event kind = %q, want %q", evt.Kind, bus.KindDisconnected)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for disconnected event")
	}
}
