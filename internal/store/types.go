package store

// Chat represents a mirrored chat.
type Chat struct {
	JID                string
	Name               string
	IsGroup            bool
	LastMessageAt      int64
	LastMessagePreview string
}

// Message represents a mirrored message.
type Message struct {
	ID          int64
	ChatJID     string
	MsgID       string
	SenderJID   string
	SenderName  string
	Body        string
	MessageType string
	FromMe      bool
	Timestamp   int64
}
