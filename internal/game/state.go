package game

import "math"

const (
	DefaultNickname   = "Аноним"
	DefaultClickPower = 1
)

type PlayerState struct {
	PlayerID      string
	Nickname      string
	Currency      float64
	TotalClicks   float64
	ClickPower    float64
	AutoClickRate float64
	Upgrades      []Upgrade
	Achievements  []Achievement
}

func NewPlayerState(playerID string) PlayerState {
	return PlayerState{
		PlayerID:     playerID,
		Nickname:     DefaultNickname,
		ClickPower:   DefaultClickPower,
		Upgrades:     DefaultUpgrades(),
		Achievements: DefaultAchievements(),
	}
}

func (s PlayerState) clone() PlayerState {
	out := s
	out.Upgrades = append([]Upgrade(nil), s.Upgrades...)
	out.Achievements = append([]Achievement(nil), s.Achievements...)
	return out
}

func (s PlayerState) Upgrade(id string) (Upgrade, bool) {
	for _, u := range s.Upgrades {
		if u.ID == id {
			return u, true
		}
	}
	return Upgrade{}, false
}

func (s PlayerState) Achievement(id string) (Achievement, bool) {
	for _, a := range s.Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// UpgradesOwned is the number of upgrades bought across the whole catalog.
func (s PlayerState) UpgradesOwned() int {
	total := 0
	for _, u := range s.Upgrades {
		total += u.Owned
	}
	return total
}

func (s PlayerState) UnlockedCount() int {
	n := 0
	for _, a := range s.Achievements {
		if a.Unlocked {
			n++
		}
	}
	return n
}

// CompletionPercent is the floored share of unlocked achievements.
func (s PlayerState) CompletionPercent() int {
	if len(s.Achievements) == 0 {
		return 0
	}
	return int(math.Floor(float64(s.UnlockedCount()) / float64(len(s.Achievements)) * 100))
}

// Progress is a persisted record as understood by the engine.
type Progress struct {
	Nickname      string
	TotalClicks   float64
	ClickPower    float64
	AutoClickRate float64
	Owned         map[string]int
	Achievements  map[string]AchievementRecord
}

type AchievementRecord struct {
	Unlocked bool
	Progress float64
}
