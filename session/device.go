package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const deviceIDFileName = "device_id"

var (
	deviceOnce sync.Once
	deviceID   string

	sessionOnce sync.Once
	sessionID   string
)

// DeviceID returns the durable device identifier attached to login requests
// for device tracking. It is generated once, persisted under the user config
// directory, and regenerated if the file goes missing. Not security-sensitive.
func DeviceID() string {
	deviceOnce.Do(func() {
		deviceID = loadOrCreateDeviceID(deviceIDPath())
	})
	return deviceID
}

// SessionID returns the per-process session identifier. Ephemeral: a new one
// is generated on every process start.
func SessionID() string {
	sessionOnce.Do(func() {
		sessionID = uuid.NewString()
	})
	return sessionID
}

func deviceIDPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "shipmate", deviceIDFileName)
}

func loadOrCreateDeviceID(path string) string {
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}

	id := uuid.NewString()

	// Best effort: an unwritable config dir just means a fresh ID next run.
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err == nil {
		_ = os.WriteFile(path, []byte(id+"\n"), 0o600)
	}
	return id
}
