package bus

import "time"

// Event kinds published by the gateway. Subscribers filter by namespace
// prefix, e.g. "session." or "wa.".
const (
	KindStatusChanged = "session.status_changed"
	KindQRGenerated   = "session.qr_generated"
	KindLoggedOut     = "session.logged_out"
	KindLiveMessage   = "wa.message"
	KindHistoryBatch  = "wa.history_batch"
	KindConnected     = "wa.connected"
	KindDisconnected  = "wa.disconnected"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
