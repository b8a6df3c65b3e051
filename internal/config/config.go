// Package config holds the client's environment-driven settings and the
// tunables shared across packages.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the resolved runtime configuration. Values come from the
// environment (a .env file is loaded by main before FromEnv runs) with
// localhost defaults matching the development stub server.
type Config struct {
	// APIBaseURL is the HTTP origin of the backend, without a trailing slash.
	APIBaseURL string
	// RelayURL is the websocket endpoint of the message relay.
	RelayURL string
	// DataDir is where the session store persists the credential and the
	// remembered login email.
	DataDir string
	// Lang selects the UI string catalog.
	Lang string
	// LocalesDir optionally overrides the built-in string catalog.
	LocalesDir string
}

// FromEnv builds a Config from SAPCCA_* environment variables.
func FromEnv() Config {
	cfg := Config{
		APIBaseURL: getenv("SAPCCA_API_URL", "http://localhost:5000"),
		RelayURL:   getenv("SAPCCA_WS_URL", "ws://localhost:5000/ws"),
		DataDir:    os.Getenv("SAPCCA_DATA_DIR"),
		Lang:       getenv("SAPCCA_LANG", "en"),
		LocalesDir: os.Getenv("SAPCCA_LOCALES_DIR"),
	}
	if cfg.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.DataDir = filepath.Join(home, ".sapcca")
		} else {
			cfg.DataDir = ".sapcca"
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

const (
	// Relay connection tunables.
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 4096
	SendBuffer     = 256

	// RequestTimeout bounds every REST round-trip.
	RequestTimeout = 15 * time.Second

	// ToastDuration is how long a status-bar notification stays visible.
	ToastDuration = 4 * time.Second
)
