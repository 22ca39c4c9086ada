package wa

import "errors"

// Sentinel conditions surfaced across the session and query layers.
// AlreadyConnected and CredentialTimeout are informational, not failures:
// the HTTP layer maps them to 200 responses.
var (
	ErrAlreadyConnected  = errors.New("client is already connected")
	ErrNotReady          = errors.New("session is not ready")
	ErrChatNotFound      = errors.New("chat not found")
	ErrMessageNotFound   = errors.New("message not found")
	ErrCredentialTimeout = errors.New("credential wait timed out")
	ErrSessionAbsent     = errors.New("no session to act on")
)
