package wa

import (
	"strings"

	"github.com/matheus3301/wppapi/internal/store"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/proto/waWeb"
	"go.mau.fi/whatsmeow/types/events"
)

// NormalizeJID strips the device suffix from a JID string. Live events
// carry "user:device@server" while history sync delivers "user@server";
// both forms must key the same chat row in the mirror.
func NormalizeJID(jid string) string {
	at := strings.IndexByte(jid, '@')
	if at < 0 {
		return jid
	}
	if colon := strings.IndexByte(jid[:at], ':'); colon >= 0 {
		return jid[:colon] + jid[at:]
	}
	return jid
}

// ParsedMessage is a normalized message ready for ingestion.
type ParsedMessage struct {
	ChatJID     string
	MsgID       string
	SenderJID   string
	SenderName  string
	Body        string
	MessageType string
	FromMe      bool
	Timestamp   int64
}

// ParseLiveMessage normalizes a live whatsmeow message event.
func ParseLiveMessage(evt *events.Message) *ParsedMessage {
	body := extractTextBody(evt.Message)
	msgType := detectMessageType(evt.Message)

	return &ParsedMessage{
		ChatJID:     NormalizeJID(evt.Info.Chat.String()),
		MsgID:       evt.Info.ID,
		SenderJID:   NormalizeJID(evt.Info.Sender.String()),
		SenderName:  evt.Info.PushName,
		Body:        body,
		MessageType: msgType,
		FromMe:      evt.Info.IsFromMe,
		Timestamp:   evt.Info.Timestamp.UnixMilli(),
	}
}

// ParseHistoryMessage normalizes one entry of a history sync
// conversation. Returns nil when the entry carries no message payload.
func ParseHistoryMessage(chatJID string, wmsg *waWeb.WebMessageInfo) *ParsedMessage {
	if wmsg == nil || wmsg.GetMessage() == nil {
		return nil
	}
	body := wmsg.GetMessage()

	return &ParsedMessage{
		ChatJID:     NormalizeJID(chatJID),
		MsgID:       wmsg.GetKey().GetID(),
		SenderJID:   NormalizeJID(wmsg.GetKey().GetParticipant()),
		Body:        extractTextBody(body),
		MessageType: detectMessageType(body),
		FromMe:      wmsg.GetKey().GetFromMe(),
		Timestamp:   int64(wmsg.GetMessageTimestamp()) * 1000,
	}
}

// ToStoreMessage converts a ParsedMessage to a store.Message.
func (p *ParsedMessage) ToStoreMessage() *store.Message {
	return &store.Message{
		ChatJID:     p.ChatJID,
		MsgID:       p.MsgID,
		SenderJID:   p.SenderJID,
		SenderName:  p.SenderName,
		Body:        p.Body,
		MessageType: p.MessageType,
		FromMe:      p.FromMe,
		Timestamp:   p.Timestamp,
	}
}

func extractTextBody(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	if c := msg.GetConversation(); c != "" {
		return c
	}
	if ext := msg.GetExtendedTextMessage(); ext != nil {
		return ext.GetText()
	}
	return ""
}

func detectMessageType(msg *waE2E.Message) string {
	if msg == nil {
		return "unknown"
	}
	switch {
	case msg.GetConversation() != "" || msg.GetExtendedTextMessage() != nil:
		return "text"
	case msg.GetImageMessage() != nil:
		return "image"
	case msg.GetVideoMessage() != nil:
		return "video"
	case msg.GetAudioMessage() != nil:
		return "audio"
	case msg.GetDocumentMessage() != nil:
		return "document"
	case msg.GetStickerMessage() != nil:
		return "sticker"
	case msg.GetContactMessage() != nil:
		return "contact"
	case msg.GetLocationMessage() != nil:
		return "location"
	default:
		return "unknown"
	}
}
