// Package watest provides a scriptable in-memory ChatClient for tests.
package watest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/matheus3301/wppapi/internal/wa"
)

// Fake implements wa.ChatClient entirely in memory. Tests script it by
// setting the exported fields and drive connectivity with MarkReady and
// EmitCredential. All methods are safe for concurrent use.
type Fake struct {
	mu sync.Mutex

	// Credentials controls HasCredentials.
	Credentials bool
	// ConnectErr is returned by Connect when set.
	ConnectErr error
	// OpErr, when set, is returned by every capability operation.
	OpErr error

	// Chats seeds LoadChats.
	Chats []wa.Chat
	// LoadChatsFailures makes that many initial LoadChats calls fail
	// before the seeded chats are served.
	LoadChatsFailures int
	// Messages maps chat id to its messages, newest first.
	Messages map[string][]wa.Message

	// Calls records capability operations as "Method(args)" strings.
	Calls []string

	ConnectCount   int
	Disconnected   bool
	LoggedOut      bool
	Closed         bool
	LoadChatsCount int

	ready     chan struct{}
	readyOnce sync.Once
	cred      chan wa.CredentialEvent
	credOnce  sync.Once
}

var _ wa.ChatClient = (*Fake)(nil)

// New returns an empty fake.
func New() *Fake {
	return &Fake{
		Messages: make(map[string][]wa.Message),
		ready:    make(chan struct{}),
	}
}

// MarkReady simulates the backend reaching a usable connection.
func (f *Fake) MarkReady() {
	f.readyOnce.Do(func() { close(f.ready) })
}

// EmitCredential pushes one credential payload into the stream.
func (f *Fake) EmitCredential(code string) {
	f.credChan() <- wa.CredentialEvent{Code: code}
}

func (f *Fake) credChan() chan wa.CredentialEvent {
	f.credOnce.Do(func() { f.cred = make(chan wa.CredentialEvent, 8) })
	return f.cred
}

func (f *Fake) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

// CallLog returns a copy of the recorded capability calls.
func (f *Fake) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	copy(out, f.Calls)
	return out
}

func (f *Fake) HasCredentials() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Credentials
}

func (f *Fake) CredentialEvents(ctx context.Context) (<-chan wa.CredentialEvent, error) {
	return f.credChan(), nil
}

func (f *Fake) Connect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ConnectCount++
	return f.ConnectErr
}

func (f *Fake) Ready() <-chan struct{} { return f.ready }

func (f *Fake) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Disconnected = true
}

func (f *Fake) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoggedOut = true
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

func (f *Fake) LoadChats(ctx context.Context) ([]wa.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoadChatsCount++
	if f.LoadChatsFailures > 0 {
		f.LoadChatsFailures--
		return nil, errors.New("transient chat list failure")
	}
	out := make([]wa.Chat, len(f.Chats))
	copy(out, f.Chats)
	return out, f.OpErr
}

func (f *Fake) FetchMessages(ctx context.Context, chatID string, limit int) ([]wa.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.OpErr != nil {
		return nil, f.OpErr
	}
	if limit <= 0 {
		limit = 1
	}
	msgs := f.Messages[chatID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	out := make([]wa.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (f *Fake) SendText(ctx context.Context, chatID, body string) (string, error) {
	f.record("SendText(%s,%s)", chatID, body)
	if f.OpErr != nil {
		return "", f.OpErr
	}
	return "sent-1", nil
}

func (f *Fake) ForwardMessage(ctx context.Context, destChatID string, msg wa.Message) error {
	f.record("ForwardMessage(%s,%s)", destChatID, msg.ID)
	return f.OpErr
}

func (f *Fake) DeleteMessage(ctx context.Context, chatID, messageID string, forEveryone bool) error {
	f.record("DeleteMessage(%s,%s,%t)", chatID, messageID, forEveryone)
	return f.OpErr
}

func (f *Fake) AddParticipants(ctx context.Context, chatID string, ids []string) error {
	f.record("AddParticipants(%s,%v)", chatID, ids)
	return f.OpErr
}

func (f *Fake) RemoveParticipants(ctx context.Context, chatID string, ids []string) error {
	f.record("RemoveParticipants(%s,%v)", chatID, ids)
	return f.OpErr
}

func (f *Fake) PromoteParticipants(ctx context.Context, chatID string, ids []string) error {
	f.record("PromoteParticipants(%s,%v)", chatID, ids)
	return f.OpErr
}

func (f *Fake) DemoteParticipants(ctx context.Context, chatID string, ids []string) error {
	f.record("DemoteParticipants(%s,%v)", chatID, ids)
	return f.OpErr
}

func (f *Fake) SetPicture(ctx context.Context, chatID, mediaPath string) error {
	f.record("SetPicture(%s,%s)", chatID, mediaPath)
	return f.OpErr
}

func (f *Fake) SetArchived(ctx context.Context, chatID string, archived bool) error {
	f.record("SetArchived(%s,%t)", chatID, archived)
	return f.OpErr
}

func (f *Fake) SetPinned(ctx context.Context, chatID string, pinned bool) error {
	f.record("SetPinned(%s,%t)", chatID, pinned)
	return f.OpErr
}

func (f *Fake) SetMuted(ctx context.Context, chatID string, muted bool) error {
	f.record("SetMuted(%s,%t)", chatID, muted)
	return f.OpErr
}

func (f *Fake) ClearMessages(ctx context.Context, chatID string) error {
	f.record("ClearMessages(%s)", chatID)
	return f.OpErr
}

func (f *Fake) DeleteChat(ctx context.Context, chatID string) error {
	f.record("DeleteChat(%s)", chatID)
	return f.OpErr
}

func (f *Fake) InviteCode(ctx context.Context, chatID string) (string, error) {
	f.record("InviteCode(%s)", chatID)
	if f.OpErr != nil {
		return "", f.OpErr
	}
	return "ABC123", nil
}

func (f *Fake) RevokeInvite(ctx context.Context, chatID string) (string, error) {
	f.record("RevokeInvite(%s)", chatID)
	if f.OpErr != nil {
		return "", f.OpErr
	}
	return "NEW456", nil
}

func (f *Fake) JoinWithInvite(ctx context.Context, code string) error {
	f.record("JoinWithInvite(%s)", code)
	return f.OpErr
}
