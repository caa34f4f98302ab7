// Package config loads client settings from the environment with sensible
// defaults for the hosted Shipmate deployment.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config holds every tunable the client surface exposes. Defaults are
// provided via struct tags so a zero environment still yields a working
// configuration.
type Config struct {
	// APIBaseURL is the REST gateway. ENV: SHIPMATE_API_BASE_URL
	APIBaseURL string `env:"SHIPMATE_API_BASE_URL,default=https://api.shipmate.app/api/v1"`
	// WSURL is the realtime gateway. ENV: SHIPMATE_WS_URL
	WSURL string `env:"SHIPMATE_WS_URL,default=wss://api.shipmate.app/ws"`

	// HTTPTimeout bounds a single REST round trip. ENV: SHIPMATE_HTTP_TIMEOUT
	HTTPTimeout time.Duration `env:"SHIPMATE_HTTP_TIMEOUT,default=30s"`
	// HandshakeTimeout bounds the websocket dial. ENV: SHIPMATE_WS_HANDSHAKE_TIMEOUT
	HandshakeTimeout time.Duration `env:"SHIPMATE_WS_HANDSHAKE_TIMEOUT,default=10s"`
	// ReconnectDelay is the fixed pause between reconnect attempts.
	// ENV: SHIPMATE_WS_RECONNECT_DELAY
	ReconnectDelay time.Duration `env:"SHIPMATE_WS_RECONNECT_DELAY,default=5s"`
	// HeartbeatInterval is the outbound heartbeat cadence; the read deadline
	// is twice this. ENV: SHIPMATE_WS_HEARTBEAT_INTERVAL
	HeartbeatInterval time.Duration `env:"SHIPMATE_WS_HEARTBEAT_INTERVAL,default=10s"`

	// LogLevel is a zerolog level name. ENV: SHIPMATE_LOG_LEVEL
	LogLevel string `env:"SHIPMATE_LOG_LEVEL,default=info"`
}

// Load populates a Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration without consulting the
// environment.
func Default() Config {
	return Config{
		APIBaseURL:        "https://api.shipmate.app/api/v1",
		WSURL:             "wss://api.shipmate.app/ws",
		HTTPTimeout:       30 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		ReconnectDelay:    5 * time.Second,
		HeartbeatInterval: 10 * time.Second,
		LogLevel:          "info",
	}
}
