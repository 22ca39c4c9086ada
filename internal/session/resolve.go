package session

import "github.com/matheus3301/wppapi/internal/config"

const DefaultSessionName = "session1"

// Resolve determines the active session name using precedence:
// 1. flagOverride (--session flag)
// 2. config.toml session_name
// 3. "session1"
func Resolve(flagOverride string, cfg *config.Config) string {
	if flagOverride != "" {
		return flagOverride
	}
	if cfg != nil && cfg.SessionName != "" {
		return cfg.SessionName
	}
	return DefaultSessionName
}
