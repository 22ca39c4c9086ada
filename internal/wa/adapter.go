package wa

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matheus3301/wppapi/internal/bus"
	"github.com/matheus3301/wppapi/internal/session"
	"github.com/matheus3301/wppapi/internal/store"
	intsync "github.com/matheus3301/wppapi/internal/sync"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/appstate"
	"go.mau.fi/whatsmeow/proto/waE2E"
	wastore "go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	_ "github.com/mattn/go-sqlite3"
)

// Adapter implements ChatClient on top of whatsmeow. It owns the
// credential store container, the app-owned mirror db, and a sync
// engine that ingests pushed history into the mirror. The backend has
// no on-demand history fetch, so message reads go through the mirror.
type Adapter struct {
	client    *whatsmeow.Client
	container *sqlstore.Container
	db        *store.DB
	engine    *intsync.Engine
	bus       *bus.Bus
	logger    *zap.Logger
	session   string

	ready     chan struct{}
	readyOnce sync.Once
}

var _ ChatClient = (*Adapter)(nil)

// NewAdapter creates a whatsmeow-backed client for the given session.
func NewAdapter(ctx context.Context, sessionName string, b *bus.Bus, logger *zap.Logger) (*Adapter, error) {
	// Device name shown on the phone's linked devices list.
	wastore.SetOSInfo("WPPAPI", [3]uint32{1, 0, 0})

	if err := session.EnsureDir(sessionName); err != nil {
		return nil, fmt.Errorf("ensure session dir: %w", err)
	}

	container, err := sqlstore.New(ctx, "sqlite3",
		fmt.Sprintf("file:%s?_foreign_keys=on", session.CredentialDBPath(sessionName)),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create credential store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("get device store: %w", err)
	}

	db, err := store.Open(session.AppDBPath(sessionName))
	if err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("open mirror db: %w", err)
	}
	if _, err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = container.Close()
		return nil, fmt.Errorf("migrate mirror db: %w", err)
	}

	a := &Adapter{
		client:    whatsmeow.NewClient(deviceStore, nil),
		container: container,
		db:        db,
		engine:    intsync.NewEngine(db, b, logger),
		bus:       b,
		logger:    logger,
		session:   sessionName,
		ready:     make(chan struct{}),
	}

	a.engine.Start(context.Background())
	a.client.AddEventHandler(a.handleEvent)

	return a, nil
}

// HasCredentials reports whether the device store holds a paired identity.
func (a *Adapter) HasCredentials() bool {
	return a.client.Store.ID != nil
}

// CredentialEvents streams QR payloads for pairing. Must be called
// before Connect, per the whatsmeow QR channel contract.
func (a *Adapter) CredentialEvents(ctx context.Context) (<-chan CredentialEvent, error) {
	if a.HasCredentials() {
		return nil, ErrAlreadyConnected
	}
	qrChan, err := a.client.GetQRChannel(ctx)
	if err != nil {
		return nil, fmt.Errorf("get QR channel: %w", err)
	}

	out := make(chan CredentialEvent, 8)
	go func() {
		defer close(out)
		for item := range qrChan {
			switch item.Event {
			case "code":
				out <- CredentialEvent{Code: item.Code}
				a.bus.Publish(bus.Event{
					Kind:      bus.KindQRGenerated,
					Timestamp: time.Now(),
					Payload:   item.Code,
				})
			case "success":
				return
			case "timeout":
				out <- CredentialEvent{Err: ErrCredentialTimeout}
				return
			default:
				if item.Error != nil {
					out <- CredentialEvent{Err: item.Error}
					return
				}
			}
		}
	}()
	return out, nil
}

// Connect initiates the backend connection.
func (a *Adapter) Connect() error {
	a.logger.Info("connecting to WhatsApp")
	return a.client.Connect()
}

// Ready returns a channel closed once the connection is usable.
func (a *Adapter) Ready() <-chan struct{} {
	return a.ready
}

// Disconnect terminates the connection, keeping credentials.
func (a *Adapter) Disconnect() {
	a.logger.Info("disconnecting from WhatsApp")
	a.client.Disconnect()
}

// Logout invalidates the session credential backend-side.
func (a *Adapter) Logout(ctx context.Context) error {
	return a.client.Logout(ctx)
}

// Close releases the mirror db, the sync engine, and the credential
// store container. It does not touch persisted credentials.
func (a *Adapter) Close() error {
	a.engine.Stop()
	dbErr := a.db.Close()
	if err := a.container.Close(); err != nil {
		return err
	}
	return dbErr
}

// LoadChats builds the chat list: joined groups from the backend (with
// participants, in backend enumeration order), then mirrored non-group
// chats by recency. Group entries win on duplicate ids.
func (a *Adapter) LoadChats(ctx context.Context) ([]Chat, error) {
	groups, err := a.client.GetJoinedGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("get joined groups: %w", err)
	}

	seen := make(map[string]bool, len(groups))
	var chats []Chat
	for _, g := range groups {
		id := g.JID.String()
		seen[id] = true
		chat := Chat{ID: id, Name: g.Name, IsGroup: true}
		for _, p := range g.Participants {
			chat.Participants = append(chat.Participants, Participant{
				ID:      p.JID.String(),
				IsAdmin: p.IsAdmin || p.IsSuperAdmin,
			})
		}
		chats = append(chats, chat)

		// Keep the mirror's name/is_group current for name lookups.
		_ = a.db.UpsertChat(&store.Chat{JID: id, Name: g.Name, IsGroup: true})
	}

	mirrored, err := a.db.ListChats(0, 0)
	if err != nil {
		return nil, fmt.Errorf("list mirrored chats: %w", err)
	}
	for _, c := range mirrored {
		if seen[c.JID] || c.IsGroup {
			continue
		}
		chats = append(chats, Chat{ID: c.JID, Name: c.Name})
	}
	return chats, nil
}

// FetchMessages returns the most recent mirrored messages, newest first.
func (a *Adapter) FetchMessages(_ context.Context, chatID string, limit int) ([]Message, error) {
	stored, err := a.db.ListMessages(chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	msgs := make([]Message, 0, len(stored))
	for _, m := range stored {
		msgs = append(msgs, Message{
			ID:                   m.MsgID,
			ChatID:               m.ChatJID,
			Timestamp:            m.Timestamp,
			Body:                 m.Body,
			FromMe:               m.FromMe,
			DeletableForEveryone: m.FromMe,
		})
	}
	return msgs, nil
}

// SendText sends a text message and records it in the mirror so that
// last-message queries observe it immediately.
func (a *Adapter) SendText(ctx context.Context, chatID, body string) (string, error) {
	to, err := types.ParseJID(chatID)
	if err != nil {
		return "", fmt.Errorf("parse JID: %w", err)
	}
	resp, err := a.client.SendMessage(ctx, to, &waE2E.Message{
		Conversation: proto.String(body),
	})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	_ = a.db.UpsertMessage(&store.Message{
		ChatJID:     chatID,
		MsgID:       resp.ID,
		Body:        body,
		MessageType: "text",
		FromMe:      true,
		Timestamp:   resp.Timestamp.UnixMilli(),
	})
	return resp.ID, nil
}

// ForwardMessage re-sends a message body to the destination chat with
// the forwarded marker set.
func (a *Adapter) ForwardMessage(ctx context.Context, destChatID string, msg Message) error {
	to, err := types.ParseJID(destChatID)
	if err != nil {
		return fmt.Errorf("parse JID: %w", err)
	}
	resp, err := a.client.SendMessage(ctx, to, &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text: proto.String(msg.Body),
			ContextInfo: &waE2E.ContextInfo{
				IsForwarded: proto.Bool(true),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("forward message: %w", err)
	}
	_ = a.db.UpsertMessage(&store.Message{
		ChatJID:     destChatID,
		MsgID:       resp.ID,
		Body:        msg.Body,
		MessageType: "text",
		FromMe:      true,
		Timestamp:   resp.Timestamp.UnixMilli(),
	})
	return nil
}

// DeleteMessage removes a message. forEveryone sends a revoke through
// the backend; otherwise the deletion is local-view only (the backend
// has no delete-for-me primitive) and drops the mirror row.
func (a *Adapter) DeleteMessage(ctx context.Context, chatID, messageID string, forEveryone bool) error {
	if forEveryone {
		jid, err := types.ParseJID(chatID)
		if err != nil {
			return fmt.Errorf("parse JID: %w", err)
		}
		if _, err := a.client.SendMessage(ctx, jid, a.client.BuildRevoke(jid, types.EmptyJID, messageID)); err != nil {
			return fmt.Errorf("revoke message: %w", err)
		}
	}
	return a.db.DeleteMessage(chatID, messageID)
}

func (a *Adapter) AddParticipants(ctx context.Context, chatID string, participantIDs []string) error {
	return a.changeParticipants(ctx, chatID, participantIDs, whatsmeow.ParticipantChangeAdd)
}

func (a *Adapter) RemoveParticipants(ctx context.Context, chatID string, participantIDs []string) error {
	return a.changeParticipants(ctx, chatID, participantIDs, whatsmeow.ParticipantChangeRemove)
}

func (a *Adapter) PromoteParticipants(ctx context.Context, chatID string, participantIDs []string) error {
	return a.changeParticipants(ctx, chatID, participantIDs, whatsmeow.ParticipantChangePromote)
}

func (a *Adapter) DemoteParticipants(ctx context.Context, chatID string, participantIDs []string) error {
	return a.changeParticipants(ctx, chatID, participantIDs, whatsmeow.ParticipantChangeDemote)
}

func (a *Adapter) changeParticipants(ctx context.Context, chatID string, participantIDs []string, change whatsmeow.ParticipantChange) error {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("parse JID: %w", err)
	}
	jids := make([]types.JID, 0, len(participantIDs))
	for _, id := range participantIDs {
		pjid, err := parseParticipantJID(id)
		if err != nil {
			return err
		}
		jids = append(jids, pjid)
	}
	if _, err := a.client.UpdateGroupParticipants(ctx, jid, jids, change); err != nil {
		return fmt.Errorf("update participants (%s): %w", change, err)
	}
	return nil
}

// SetPicture updates the group picture from a local media path.
func (a *Adapter) SetPicture(ctx context.Context, chatID, mediaPath string) error {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("parse JID: %w", err)
	}
	avatar, err := os.ReadFile(mediaPath)
	if err != nil {
		return fmt.Errorf("read media: %w", err)
	}
	if _, err := a.client.SetGroupPhoto(ctx, jid, avatar); err != nil {
		return fmt.Errorf("set group photo: %w", err)
	}
	return nil
}

func (a *Adapter) SetArchived(ctx context.Context, chatID string, archived bool) error {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("parse JID: %w", err)
	}
	if err := a.client.SendAppState(ctx, appstate.BuildArchive(jid, archived, time.Time{}, nil)); err != nil {
		return fmt.Errorf("archive patch: %w", err)
	}
	return nil
}

func (a *Adapter) SetPinned(ctx context.Context, chatID string, pinned bool) error {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("parse JID: %w", err)
	}
	if err := a.client.SendAppState(ctx, appstate.BuildPin(jid, pinned)); err != nil {
		return fmt.Errorf("pin patch: %w", err)
	}
	return nil
}

func (a *Adapter) SetMuted(ctx context.Context, chatID string, muted bool) error {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("parse JID: %w", err)
	}
	// Indefinite mute; unmute clears it.
	if err := a.client.SendAppState(ctx, appstate.BuildMute(jid, muted, 0)); err != nil {
		return fmt.Errorf("mute patch: %w", err)
	}
	return nil
}

// ClearMessages drops all mirrored messages of a chat. Local-view only.
func (a *Adapter) ClearMessages(_ context.Context, chatID string) error {
	return a.db.ClearMessages(chatID)
}

// DeleteChat leaves the group (for group chats) and removes the chat
// and its messages from the mirror.
func (a *Adapter) DeleteChat(ctx context.Context, chatID string) error {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("parse JID: %w", err)
	}
	if jid.Server == types.GroupServer {
		if err := a.client.LeaveGroup(ctx, jid); err != nil {
			return fmt.Errorf("leave group: %w", err)
		}
	}
	return a.db.DeleteChat(chatID)
}

// InviteCode returns the current bare invite code of a group.
func (a *Adapter) InviteCode(ctx context.Context, chatID string) (string, error) {
	return a.inviteCode(ctx, chatID, false)
}

// RevokeInvite invalidates the current invite and returns the new bare code.
func (a *Adapter) RevokeInvite(ctx context.Context, chatID string) (string, error) {
	return a.inviteCode(ctx, chatID, true)
}

func (a *Adapter) inviteCode(ctx context.Context, chatID string, reset bool) (string, error) {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return "", fmt.Errorf("parse JID: %w", err)
	}
	link, err := a.client.GetGroupInviteLink(ctx, jid, reset)
	if err != nil {
		return "", fmt.Errorf("get invite link: %w", err)
	}
	return NormalizeInviteCode(link), nil
}

// JoinWithInvite joins a group given a bare invite code.
func (a *Adapter) JoinWithInvite(ctx context.Context, code string) error {
	if _, err := a.client.JoinGroupWithLink(ctx, code); err != nil {
		return fmt.Errorf("join with invite: %w", err)
	}
	return nil
}

// parseParticipantJID accepts either a full JID or a bare phone number.
func parseParticipantJID(id string) (types.JID, error) {
	if !strings.Contains(id, "@") {
		return types.NewJID(id, types.DefaultUserServer), nil
	}
	jid, err := types.ParseJID(id)
	if err != nil {
		return types.JID{}, fmt.Errorf("parse participant %q: %w", id, err)
	}
	return jid, nil
}
