package wa

import "time"

// Snapshot is an immutable point-in-time copy of the chat list, taken
// when a session reaches ready and replaced wholesale on refresh. It is
// never mutated in place; the registry swaps an atomic pointer so
// readers iterating an old snapshot are unaffected.
type Snapshot struct {
	takenAt time.Time
	chats   []Chat
}

// NewSnapshot builds a snapshot preserving the given chat order.
func NewSnapshot(chats []Chat) *Snapshot {
	return &Snapshot{takenAt: time.Now(), chats: chats}
}

// TakenAt returns when the snapshot was captured.
func (s *Snapshot) TakenAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.takenAt
}

// Len returns the number of chats.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.chats)
}

// Chats returns a copy of the chat list.
func (s *Snapshot) Chats() []Chat {
	if s == nil {
		return nil
	}
	out := make([]Chat, len(s.chats))
	copy(out, s.chats)
	return out
}

// ByID resolves a chat by exact id.
func (s *Snapshot) ByID(id string) (Chat, bool) {
	if s == nil {
		return Chat{}, false
	}
	for _, c := range s.chats {
		if c.ID == id {
			return c, true
		}
	}
	return Chat{}, false
}

// ByName resolves a chat by exact name. Name collisions are not an
// error: the first match in snapshot order wins, deterministically.
func (s *Snapshot) ByName(name string) (Chat, bool) {
	if s == nil {
		return Chat{}, false
	}
	for _, c := range s.chats {
		if c.Name == name {
			return c, true
		}
	}
	return Chat{}, false
}
