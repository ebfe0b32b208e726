package session

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/TheRealTwizzy/clicker/internal/game"
)

// LoadOrCreatePlayerID returns the id stored at path, generating and
// storing a new one on first use.
func LoadOrCreatePlayerID(path string, now time.Time) (string, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}

	id := game.NewPlayerID(now)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", err
	}
	return id, nil
}

// DefaultIdentityPath is where the player id lives unless overridden.
func DefaultIdentityPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "clicker", "player_id")
}
