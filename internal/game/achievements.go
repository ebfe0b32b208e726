package game

// progressFor derives an achievement's progress from the current state.
func progressFor(id string, s *PlayerState) float64 {
	if id == AchievementFirstUpgrade {
		return float64(s.UpgradesOwned())
	}
	return s.TotalClicks
}

// evaluateLocked refreshes every achievement and returns one notice per
// newly unlocked entry. Unlocks are never reverted.
func (e *Engine) evaluateLocked() []Notice {
	var notices []Notice
	for i := range e.state.Achievements {
		a := &e.state.Achievements[i]
		a.Progress = progressFor(a.ID, &e.state)
		if a.Unlocked || a.Progress < a.Target {
			continue
		}
		a.Unlocked = true
		notices = append(notices, Notice{
			Level:   NoticeSuccess,
			Kind:    NoticeAchievementUnlocked,
			Subject: a.ID,
			Message: "Достижение разблокировано: " + a.Name + "!",
		})
	}
	return notices
}
