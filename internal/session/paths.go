package session

import (
	"os"
	"path/filepath"
)

// BaseDir returns the gateway state directory, ~/.wppapi by default.
// The WPPAPI_HOME environment variable overrides it (used by tests and
// containerized deployments).
func BaseDir() string {
	if dir := os.Getenv("WPPAPI_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wppapi")
}

// Dir returns the session-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "sessions", name)
}

// LockPath returns the lock file path guarding the gateway instance.
func LockPath() string {
	return filepath.Join(BaseDir(), "LOCK")
}

// CredentialDBPath returns the whatsmeow credential store (session.db) path.
func CredentialDBPath(name string) string {
	return filepath.Join(Dir(name), "session.db")
}

// AppDBPath returns the app-owned chat/message mirror (wppapi.db) path.
func AppDBPath(name string) string {
	return filepath.Join(Dir(name), "wppapi.db")
}

// QRPath returns where the last login QR code is rendered as a PNG.
func QRPath(name string) string {
	return filepath.Join(Dir(name), "qr.png")
}

// LogDir returns the log directory for a session.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the gateway log file path for a session.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "wppapid.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the session directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}

// CredentialsExist reports whether persisted authentication material exists
// for the session. Presence of the credential store file is the proxy: the
// backend decides on connect whether it actually holds a paired device.
func CredentialsExist(name string) bool {
	_, err := os.Stat(CredentialDBPath(name))
	return err == nil
}

// PurgeCredentials removes all persisted state for the session, including
// the credential store. The next connect starts from a fresh QR pairing.
func PurgeCredentials(name string) error {
	return os.RemoveAll(Dir(name))
}
