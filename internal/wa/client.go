// Package wa defines the chat-client capability boundary and its
// whatsmeow-backed implementation.
package wa

import "context"

// Participant is a member of a group chat.
type Participant struct {
	ID      string `json:"id"`
	IsAdmin bool   `json:"isAdmin"`
}

// Chat is one conversation thread, individual or group.
type Chat struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	IsGroup      bool          `json:"isGroup"`
	Participants []Participant `json:"participants,omitempty"`
}

// Message is a single chat message.
type Message struct {
	ID        string `json:"id"`
	ChatID    string `json:"chatId"`
	Timestamp int64  `json:"timestamp"`
	Body      string `json:"body"`
	FromMe    bool   `json:"fromMe"`
	// DeletableForEveryone reports whether a broadcast deletion (revoke)
	// can be requested for this message. Only own messages qualify.
	DeletableForEveryone bool `json:"isDeletableForEveryone"`
}

// CredentialEvent is one item of the login credential (QR) stream.
// Exactly one of Code or Err is set.
type CredentialEvent struct {
	Code string
	Err  error
}

// ChatClient is the capability set any concrete messaging backend must
// satisfy. One ChatClient instance maps to one backend handle; the
// session registry owns it exclusively.
//
// Every operation below the lifecycle group assumes the session reached
// ready; callers enforce that and surface ErrNotReady otherwise.
type ChatClient interface {
	// HasCredentials reports whether persisted authentication material
	// allows a silent re-auth, skipping the QR exchange.
	HasCredentials() bool
	// CredentialEvents returns a stream of login credential payloads.
	// Must be called before Connect when no credentials are persisted.
	CredentialEvents(ctx context.Context) (<-chan CredentialEvent, error)
	// Connect initiates the backend connection.
	Connect() error
	// Ready returns a channel closed once the connection is usable.
	Ready() <-chan struct{}
	// Disconnect closes the connection, keeping credentials.
	Disconnect()
	// Logout invalidates the credential backend-side.
	Logout(ctx context.Context) error
	// Close releases all local resources held by the client.
	Close() error

	// LoadChats fetches the full chat list used to build the snapshot.
	LoadChats(ctx context.Context) ([]Chat, error)
	// FetchMessages returns the most recent messages of a chat, newest
	// first. A non-positive limit behaves as limit 1.
	FetchMessages(ctx context.Context, chatID string, limit int) ([]Message, error)
	SendText(ctx context.Context, chatID, body string) (messageID string, err error)
	ForwardMessage(ctx context.Context, destChatID string, msg Message) error
	DeleteMessage(ctx context.Context, chatID, messageID string, forEveryone bool) error

	AddParticipants(ctx context.Context, chatID string, participantIDs []string) error
	RemoveParticipants(ctx context.Context, chatID string, participantIDs []string) error
	PromoteParticipants(ctx context.Context, chatID string, participantIDs []string) error
	DemoteParticipants(ctx context.Context, chatID string, participantIDs []string) error

	SetPicture(ctx context.Context, chatID, mediaPath string) error
	SetArchived(ctx context.Context, chatID string, archived bool) error
	SetPinned(ctx context.Context, chatID string, pinned bool) error
	SetMuted(ctx context.Context, chatID string, muted bool) error
	ClearMessages(ctx context.Context, chatID string) error
	DeleteChat(ctx context.Context, chatID string) error

	// InviteCode returns the bare invite code of a group chat.
	InviteCode(ctx context.Context, chatID string) (string, error)
	// RevokeInvite invalidates the current invite and returns the new
	// bare code.
	RevokeInvite(ctx context.Context, chatID string) (string, error)
	// JoinWithInvite joins a group given a bare invite code.
	JoinWithInvite(ctx context.Context, code string) error
}

// NewClientFunc creates a backend handle for a session name. The registry
// uses it so tests can substitute a fake backend.
type NewClientFunc func(ctx context.Context, sessionName string) (ChatClient, error)
