package status

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/wppapi/internal/bus"
)

// State represents a session lifecycle state.
type State string

const (
	// Absent means no session exists for the slot.
	Absent State = "ABSENT"
	// Connecting means a backend handle was created and is initializing.
	Connecting State = "CONNECTING"
	// AwaitingCredential means the backend asked for a QR pairing and the
	// session is parked until the credential is presented out-of-band.
	AwaitingCredential State = "AWAITING_CREDENTIAL"
	// Ready means the backend connection is usable and the chat snapshot
	// is populated.
	Ready State = "READY"
	// Destroyed is terminal for the handle; the slot returns to Absent.
	Destroyed State = "DESTROYED"
)

// validTransitions defines allowed lifecycle transitions. Connecting may
// jump straight to Ready when the backend silently re-authenticates with
// persisted credentials; no transition skips Connecting.
var validTransitions = map[State][]State{
	Absent:             {Connecting},
	Connecting:         {AwaitingCredential, Ready, Absent},
	AwaitingCredential: {Ready, Absent},
	Ready:              {Destroyed, Absent},
	Destroyed:          {Absent},
}

// Machine tracks and enforces session lifecycle transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	session string
	bus     *bus.Bus
}

// NewMachine creates a state machine for the named session, starting in
// Absent.
func NewMachine(sessionName string, b *bus.Bus) *Machine {
	return &Machine{
		current: Absent,
		session: sessionName,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Live reports whether the session holds a backend handle: any state
// between Connecting and Ready inclusive.
func (m *Machine) Live() bool {
	switch m.Current() {
	case Connecting, AwaitingCredential, Ready:
		return true
	}
	return false
}

// Transition attempts to move to a new state. Returns an error if the
// transition is not allowed.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	m.set(to)
	return nil
}

// ForceAbsent moves to Absent from any state. Used by forced destroy.
func (m *Machine) ForceAbsent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == Absent {
		return
	}
	m.set(Absent)
}

// set assumes m.mu is held.
func (m *Machine) set(to State) {
	from := m.current
	m.current = to
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      bus.KindStatusChanged,
			Timestamp: time.Now(),
			Payload: StatusChange{
				Session: m.session,
				From:    from,
				To:      to,
			},
		})
	}
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	Session string
	From    State
	To      State
}
