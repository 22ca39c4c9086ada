package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Defaults match the deployment this gateway replaced.
const (
	DefaultPort                = 7000
	DefaultDomain              = "http://localhost"
	DefaultCredentialWaitTicks = 60
)

// Config represents the global config.toml.
type Config struct {
	// Port is the HTTP listen port.
	Port int `toml:"port"`
	// SessionName is the single configured session slot.
	SessionName string `toml:"session_name"`
	// Domain is the base domain the gateway is reachable on.
	Domain string `toml:"domain"`
	// CredentialWaitTicks bounds the QR wait on /connect-session,
	// in one-second ticks.
	CredentialWaitTicks int `toml:"credential_wait_ticks"`

	// Headless and Executable are accepted for compatibility with the
	// browser-automation deployment this gateway replaced. The whatsmeow
	// backend speaks the protocol directly, so both are ignored.
	Headless   bool   `toml:"headless"`
	Executable string `toml:"executable"`
}

// Default returns a config populated with deployment defaults.
func Default() *Config {
	return &Config{
		Port:                DefaultPort,
		SessionName:         "session1",
		Domain:              DefaultDomain,
		CredentialWaitTicks: DefaultCredentialWaitTicks,
	}
}

// Load reads config from the given path and fills unset fields with
// defaults. Returns an error if the file is missing or malformed.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadOrDefault reads config from path, falling back to defaults when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

func applyDefaults(cfg *Config) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.SessionName == "" {
		cfg.SessionName = "session1"
	}
	if cfg.Domain == "" {
		cfg.Domain = DefaultDomain
	}
	if cfg.CredentialWaitTicks <= 0 {
		cfg.CredentialWaitTicks = DefaultCredentialWaitTicks
	}
}
