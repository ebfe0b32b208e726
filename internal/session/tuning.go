package session

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	APIBaseURL            string `yaml:"api_base_url"`
	SaveIntervalMs        int    `yaml:"save_interval_ms"`
	LeaderboardIntervalMs int    `yaml:"leaderboard_interval_ms"`
	RequestTimeoutMs      int    `yaml:"request_timeout_ms"`
	Locale                string `yaml:"locale"`
}

func Defaults() Tuning {
	return Tuning{
		APIBaseURL:            "http://localhost:8080/api/player",
		SaveIntervalMs:        3000,
		LeaderboardIntervalMs: 10000,
		RequestTimeoutMs:      15000,
		Locale:                "ru-RU",
	}
}

// LoadTuning overlays the YAML file at path on Defaults. A missing file is
// not an error.
func LoadTuning(path string) (Tuning, error) {
	t := Defaults()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Defaults(), fmt.Errorf("tuning %s: %w", path, err)
	}
	return t.sanitized(), nil
}

func (t Tuning) sanitized() Tuning {
	d := Defaults()
	if t.APIBaseURL == "" {
		t.APIBaseURL = d.APIBaseURL
	}
	if t.SaveIntervalMs <= 0 {
		t.SaveIntervalMs = d.SaveIntervalMs
	}
	if t.LeaderboardIntervalMs <= 0 {
		t.LeaderboardIntervalMs = d.LeaderboardIntervalMs
	}
	if t.RequestTimeoutMs <= 0 {
		t.RequestTimeoutMs = d.RequestTimeoutMs
	}
	if t.Locale == "" {
		t.Locale = d.Locale
	}
	return t
}

func (t Tuning) SaveInterval() time.Duration {
	return time.Duration(t.SaveIntervalMs) * time.Millisecond
}

func (t Tuning) LeaderboardInterval() time.Duration {
	return time.Duration(t.LeaderboardIntervalMs) * time.Millisecond
}

func (t Tuning) RequestTimeout() time.Duration {
	return time.Duration(t.RequestTimeoutMs) * time.Millisecond
}
