package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestLoadOrCreateDeviceID_Stable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipmate", "device_id")

	first := loadOrCreateDeviceID(path)
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("device id %q is not UUID-shaped: %v", first, err)
	}

	second := loadOrCreateDeviceID(path)
	if second != first {
		t.Errorf("device id changed across loads: %q then %q", first, second)
	}
}

func TestLoadOrCreateDeviceID_Regenerated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device_id")

	first := loadOrCreateDeviceID(path)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	second := loadOrCreateDeviceID(path)
	if second == first {
		t.Error("device id not regenerated after file removal")
	}
	if _, err := uuid.Parse(second); err != nil {
		t.Errorf("regenerated id %q is not UUID-shaped: %v", second, err)
	}
}

func TestSessionID_StablePerProcess(t *testing.T) {
	first := SessionID()
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("session id %q is not UUID-shaped: %v", first, err)
	}
	if SessionID() != first {
		t.Error("SessionID() changed within one process")
	}
}
