package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadOrCreatePlayerID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "player_id")
	now := time.UnixMilli(1700000000123)

	first, err := LoadOrCreatePlayerID(path, now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(first, "player_1700000000123_") {
		t.Fatalf("id: %q", first)
	}

	second, err := LoadOrCreatePlayerID(path, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if second != first {
		t.Fatalf("id changed across loads: %q then %q", first, second)
	}
}

func TestLoadOrCreatePlayerIDReplacesBlankFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player_id")
	if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	id, err := LoadOrCreatePlayerID(path, time.UnixMilli(42))
	if err != nil {
		t.Fatalf("LoadOrCreatePlayerID: %v", err)
	}
	if !strings.HasPrefix(id, "player_42_") {
		t.Fatalf("id: %q", id)
	}
}
