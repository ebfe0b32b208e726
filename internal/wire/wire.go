// Package wire holds the JSON bodies exchanged between the clicker client
// and the persistence service.
package wire

import "encoding/json"

const (
	ActionPlayer      = "player"
	ActionLeaderboard = "leaderboard"
)

type UpgradeOwned struct {
	ID    string `json:"id"`
	Owned int    `json:"owned"`
}

type AchievementProgress struct {
	ID       string  `json:"id"`
	Unlocked bool    `json:"unlocked"`
	Progress float64 `json:"progress"`
}

// PlayerRecord is the body of GET ?action=player and of successful PUTs.
type PlayerRecord struct {
	Nickname      string                `json:"nickname"`
	TotalClicks   int64                 `json:"totalClicks"`
	ClickPower    int64                 `json:"clickPower"`
	AutoClickRate float64               `json:"autoClickRate"`
	Upgrades      []UpgradeOwned        `json:"upgrades"`
	Achievements  []AchievementProgress `json:"achievements"`
}

type RegisterRequest struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname,omitempty"`
}

// SaveRequest is the full-record upsert sent by every flush.
type SaveRequest struct {
	PlayerID      string                `json:"playerId"`
	Nickname      string                `json:"nickname"`
	TotalClicks   int64                 `json:"totalClicks"`
	ClickPower    float64               `json:"clickPower"`
	AutoClickRate float64               `json:"autoClickRate"`
	Upgrades      []UpgradeOwned        `json:"upgrades"`
	Achievements  []AchievementProgress `json:"achievements"`
}

// PlayerPatch is the server-side view of a PUT: only the fields present in
// the body are applied.
type PlayerPatch struct {
	PlayerID      string          `json:"playerId"`
	Nickname      *string         `json:"nickname,omitempty"`
	TotalClicks   *float64        `json:"totalClicks,omitempty"`
	ClickPower    *float64        `json:"clickPower,omitempty"`
	AutoClickRate *float64        `json:"autoClickRate,omitempty"`
	Upgrades      json.RawMessage `json:"upgrades,omitempty"`
	Achievements  json.RawMessage `json:"achievements,omitempty"`
}

type LeaderboardEntry struct {
	Nickname      string  `json:"nickname"`
	TotalClicks   int64   `json:"totalClicks"`
	ClickPower    int64   `json:"clickPower"`
	AutoClickRate float64 `json:"autoClickRate"`
}

type LeaderboardResponse struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// LeaderboardFrame is pushed over the leaderboard stream.
type LeaderboardFrame struct {
	Type        string             `json:"type"`
	ServerTime  string             `json:"serverTime"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
