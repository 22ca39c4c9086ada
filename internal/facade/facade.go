// Package facade bundles the chat and message queries the HTTP surface
// exposes. Every operation resolves the target chat against the current
// snapshot first, then delegates to the session's backend handle.
package facade

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/matheus3301/wppapi/internal/registry"
	"github.com/matheus3301/wppapi/internal/wa"
)

// Facade answers chat and message queries for ready sessions.
type Facade struct {
	reg    *registry.Registry
	logger *zap.Logger
}

// New creates a facade over the session registry.
func New(reg *registry.Registry, logger *zap.Logger) *Facade {
	return &Facade{reg: reg, logger: logger}
}

// Chats lists the current chat snapshot of a session.
func (f *Facade) Chats(name string) ([]wa.Chat, error) {
	return f.reg.Chats(name)
}

// resolve returns the backend handle and the snapshot entry for chatID,
// or ErrChatNotFound when the snapshot holds no such chat.
func (f *Facade) resolve(name, chatID string) (wa.ChatClient, wa.Chat, error) {
	client, snap, err := f.reg.Ready(name)
	if err != nil {
		return nil, wa.Chat{}, err
	}
	chat, ok := snap.ByID(chatID)
	if !ok {
		return nil, wa.Chat{}, wa.ErrChatNotFound
	}
	return client, chat, nil
}

// Messages returns the most recent messages of a chat, newest first. A
// non-positive limit behaves as limit 1.
func (f *Facade) Messages(ctx context.Context, name, chatID string, limit int) ([]wa.Message, error) {
	client, chat, err := f.resolve(name, chatID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 1
	}
	return client.FetchMessages(ctx, chat.ID, limit)
}

// LastMessage returns the most recent message of a chat, or
// ErrMessageNotFound when the chat holds none.
func (f *Facade) LastMessage(ctx context.Context, name, chatID string) (wa.Message, error) {
	msgs, err := f.Messages(ctx, name, chatID, 1)
	if err != nil {
		return wa.Message{}, err
	}
	if len(msgs) == 0 {
		return wa.Message{}, wa.ErrMessageNotFound
	}
	return msgs[0], nil
}

// Participants lists the members of a chat.
func (f *Facade) Participants(name, chatID string) ([]wa.Participant, error) {
	_, chat, err := f.resolve(name, chatID)
	if err != nil {
		return nil, err
	}
	out := make([]wa.Participant, len(chat.Participants))
	copy(out, chat.Participants)
	return out, nil
}

// Admins lists the admin members of a chat, preserving their relative
// order within the participant list.
func (f *Facade) Admins(name, chatID string) ([]wa.Participant, error) {
	participants, err := f.Participants(name, chatID)
	if err != nil {
		return nil, err
	}
	admins := make([]wa.Participant, 0, len(participants))
	for _, p := range participants {
		if p.IsAdmin {
			admins = append(admins, p)
		}
	}
	return admins, nil
}

// ForwardLastMessage forwards the most recent message of src to dst.
// An empty src fails with ErrMessageNotFound before dst is even
// resolved; nothing is sent in that case.
func (f *Facade) ForwardLastMessage(ctx context.Context, name, srcChatID, dstChatID string) error {
	msg, err := f.LastMessage(ctx, name, srcChatID)
	if err != nil {
		return err
	}
	client, dst, err := f.resolve(name, dstChatID)
	if err != nil {
		return err
	}
	return client.ForwardMessage(ctx, dst.ID, msg)
}

// SendMessageByName sends a text to the first chat whose name matches
// exactly. A missing chat is not an error; sent reports the outcome.
func (f *Facade) SendMessageByName(ctx context.Context, name, chatName, body string) (sent bool, err error) {
	client, snap, err := f.reg.Ready(name)
	if err != nil {
		return false, err
	}
	chat, ok := snap.ByName(chatName)
	if !ok {
		return false, nil
	}
	if _, err := client.SendText(ctx, chat.ID, body); err != nil {
		return false, fmt.Errorf("send text: %w", err)
	}
	return true, nil
}

// DeleteLastMessage deletes the most recent message of a chat. An empty
// chat is not an error; deleted reports the outcome.
func (f *Facade) DeleteLastMessage(ctx context.Context, name, chatID string, forEveryone bool) (deleted bool, err error) {
	msg, err := f.LastMessage(ctx, name, chatID)
	if err != nil {
		if errors.Is(err, wa.ErrMessageNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := f.deleteMessage(ctx, name, chatID, msg.ID, forEveryone); err != nil {
		return false, err
	}
	return true, nil
}

func (f *Facade) deleteMessage(ctx context.Context, name, chatID, messageID string, forEveryone bool) error {
	client, chat, err := f.resolve(name, chatID)
	if err != nil {
		return err
	}
	return client.DeleteMessage(ctx, chat.ID, messageID, forEveryone)
}

// AddParticipants adds members to a group chat.
func (f *Facade) AddParticipants(ctx context.Context, name, chatID string, ids []string) error {
	client, chat, err := f.resolve(name, chatID)
	if err != nil {
		return err
	}
	return client.AddParticipants(ctx, chat.ID, ids)
}

// RemoveParticipants removes members from a group chat.
func (f *Facade) RemoveParticipants(ctx context.Context, name, chatID string, ids []string) error {
	client, chat, err := f.resolve(name, chatID)
	if err != nil {
		return err
	}
	return client.RemoveParticipants(ctx, chat.ID, ids)
}

// PromoteParticipants grants admin to members of a group chat.
func (f *Facade) PromoteParticipants(ctx context.Context, name, chatID string, ids []string) error {
	client, chat, err := f.resolve(name, chatID)
	if err != nil {
		return err
	}
	return client.PromoteParticipants(ctx, chat.ID, ids)
}

// DemoteParticipants revokes admin from members of a group chat.
func (f *Facade) DemoteParticipants(ctx context.Context, name, chatID string, ids []string) error {
	client, chat, err := f.resolve(name, chatID)
	if err != nil {
		return err
	}
	return client.DemoteParticipants(ctx, chat.ID, ids)
}

// SetPicture updates the chat picture from a local media path.
func (f *Facade) SetPicture(ctx context.Context, name, chatID, mediaPath string) error {
	client, chat, err := f.resolve(name, chatID)
	if err != nil {
		return err
	}
	return client.SetPicture(ctx, chat.ID, mediaPath)
}

// SetArchived archives or unarchives a chat.
func (f *Facade) SetArchived(ctx context.Context, name, chatID string, archived bool) error {
	client, chat, err := f.resolve(name, chatID)
	if err != nil {
		return err
	}
	return client.SetArchived(ctx, chat.ID, archived)
}

// SetPinned pins or unpins a chat.
func (f *Facade) SetPinned(ctx context.Context, name, chatID string, pinned bool) error {
	client, chat, err := f.resolve(name, chatID)
	if err != nil {
		return err
	}
	return client.SetPinned(ctx, chat.ID, pinned)
}

// SetMuted mutes or unmutes a chat.
func (f *Facade) SetMuted(ctx context.Context, name, chatID string, muted bool) error {
	client, chat, err := f.resolve(name, chatID)
	if err != nil {
		return err
	}
	return client.SetMuted(ctx, chat.ID, muted)
}

// ClearMessages removes all messages of a chat.
func (f *Facade) ClearMessages(ctx context.Context, name, chatID string) error {
	client, chat, err := f.resolve(name, chatID)
	if err != nil {
		return err
	}
	return client.ClearMessages(ctx, chat.ID)
}

// DeleteChat deletes a chat entirely.
func (f *Facade) DeleteChat(ctx context.Context, name, chatID string) error {
	client, chat, err := f.resolve(name, chatID)
	if err != nil {
		return err
	}
	if err := client.DeleteChat(ctx, chat.ID); err != nil {
		return err
	}
	// The snapshot still lists the chat; refresh so it disappears.
	if rerr := f.reg.RefreshSnapshot(ctx, name); rerr != nil {
		f.logger.Warn("refresh snapshot after chat delete",
			zap.String("session", name), zap.Error(rerr))
	}
	return nil
}

// InviteLink returns the full invite link of a group chat.
func (f *Facade) InviteLink(ctx context.Context, name, chatID string) (string, error) {
	client, chat, err := f.resolve(name, chatID)
	if err != nil {
		return "", err
	}
	code, err := client.InviteCode(ctx, chat.ID)
	if err != nil {
		return "", err
	}
	return wa.InviteLink(code), nil
}

// RevokeInvite invalidates the current invite of a group chat and
// returns the replacement link.
func (f *Facade) RevokeInvite(ctx context.Context, name, chatID string) (string, error) {
	client, chat, err := f.resolve(name, chatID)
	if err != nil {
		return "", err
	}
	code, err := client.RevokeInvite(ctx, chat.ID)
	if err != nil {
		return "", err
	}
	return wa.InviteLink(code), nil
}

// AcceptInvite joins a group from an invite code or full link.
func (f *Facade) AcceptInvite(ctx context.Context, name, codeOrLink string) error {
	client, _, err := f.reg.Ready(name)
	if err != nil {
		return err
	}
	if err := client.JoinWithInvite(ctx, wa.NormalizeInviteCode(codeOrLink)); err != nil {
		return err
	}
	if rerr := f.reg.RefreshSnapshot(ctx, name); rerr != nil {
		f.logger.Warn("refresh snapshot after invite join",
			zap.String("session", name), zap.Error(rerr))
	}
	return nil
}
