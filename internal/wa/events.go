package wa

import (
	"time"

	"github.com/matheus3301/wppapi/internal/bus"
	"github.com/matheus3301/wppapi/internal/store"
	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"
)

// handleEvent processes whatsmeow events. Connectivity events feed the
// ready channel and the bus; message and history events are published
// for the sync engine, which subscribes independently.
func (a *Adapter) handleEvent(rawEvt any) {
	switch evt := rawEvt.(type) {
	case *events.Connected:
		a.logger.Info("WhatsApp connected")
		a.readyOnce.Do(func() { close(a.ready) })
		a.bus.Publish(bus.Event{Kind: bus.KindConnected, Timestamp: time.Now()})
	case *events.Message:
		parsed := ParseLiveMessage(evt)
		a.bus.Publish(bus.Event{
			Kind:      bus.KindLiveMessage,
			Timestamp: time.Now(),
			Payload:   parsed.ToStoreMessage(),
		})
	case *events.HistorySync:
		a.handleHistorySync(evt)
	case *events.Disconnected:
		a.logger.Warn("WhatsApp disconnected")
		a.bus.Publish(bus.Event{Kind: bus.KindDisconnected, Timestamp: time.Now()})
	case *events.LoggedOut:
		a.logger.Warn("WhatsApp logged out", zap.String("reason", evt.Reason.String()))
		a.bus.Publish(bus.Event{
			Kind:      bus.KindLoggedOut,
			Timestamp: time.Now(),
			Payload:   evt.Reason.String(),
		})
	}
}

func (a *Adapter) handleHistorySync(evt *events.HistorySync) {
	data := evt.Data
	if data == nil {
		return
	}

	var msgs []*store.Message
	for _, conv := range data.GetConversations() {
		chatJID := conv.GetID()
		for _, hm := range conv.GetMessages() {
			parsed := ParseHistoryMessage(chatJID, hm.GetMessage())
			if parsed == nil {
				continue
			}
			msgs = append(msgs, parsed.ToStoreMessage())
		}
	}

	if len(msgs) == 0 {
		return
	}
	a.logger.Debug("history sync batch", zap.Int("messages", len(msgs)))
	a.bus.Publish(bus.Event{
		Kind:      bus.KindHistoryBatch,
		Timestamp: time.Now(),
		Payload:   msgs,
	})
}
