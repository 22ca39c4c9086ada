package wa

import "testing"

func testSnapshot() *Snapshot {
	return NewSnapshot([]Chat{
		{ID: "1@g.us", Name: "Friends", IsGroup: true, Participants: []Participant{
			{ID: "a@s", IsAdmin: true},
			{ID: "b@s"},
			{ID: "c@s", IsAdmin: true},
		}},
		{ID: "2@g.us", Name: "Work", IsGroup: true},
		{ID: "3@g.us", Name: "Friends", IsGroup: true},
		{ID: "4@s.whatsapp.net", Name: "Alice"},
	})
}

func TestByID(t *testing.T) {
	s := testSnapshot()
	c, ok := s.ByID("2@g.us")
	if !ok || c.Name != "Work" {
		t.Errorf("ByID = %+v, %v", c, ok)
	}
	if _, ok := s.ByID("missing"); ok {
		t.Error("ByID found a missing chat")
	}
}

func TestByNameFirstMatchWins(t *testing.T) {
	s := testSnapshot()
	// Two chats are named "Friends"; snapshot order decides.
	c, ok := s.ByName("Friends")
	if !ok {
		t.Fatal("ByName missed")
	}
	if c.ID != "1@g.us" {
		t.Errorf("ByName returned %q, want first match 1@g.us", c.ID)
	}
	if _, ok := s.ByName("Nobody"); ok {
		t.Error("ByName found a missing chat")
	}
}

func TestChatsReturnsCopy(t *testing.T) {
	s := testSnapshot()
	chats := s.Chats()
	chats[0].Name = "mutated"
	if c, _ := s.ByID("1@g.us"); c.Name != "Friends" {
		t.Error("snapshot mutated through Chats() result")
	}
}

func TestNilSnapshot(t *testing.T) {
	var s *Snapshot
	if s.Len() != 0 {
		t.Error("nil Len != 0")
	}
	if _, ok := s.ByID("x"); ok {
		t.Error("nil ByID found something")
	}
	if _, ok := s.ByName("x"); ok {
		t.Error("nil ByName found something")
	}
	if s.Chats() != nil {
		t.Error("nil Chats != nil")
	}
}
