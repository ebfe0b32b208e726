// Package game implements the clicker state engine: manual clicks, upgrade
// purchases, the passive tick and achievement evaluation.
package game

import (
	"fmt"
	"sync"
	"time"
)

const (
	// TicksPerSecond splits autoClickRate into equal sub-second increments.
	TicksPerSecond = 10
	TickInterval   = time.Second / TicksPerSecond

	ClickFeedback = 300 * time.Millisecond
)

// Engine owns one player's state. Every mutation runs under mu, so the
// tick, flush and input goroutines never interleave.
type Engine struct {
	mu        sync.Mutex
	state     PlayerState
	lastClick time.Time

	notifier Notifier
	now      func() time.Time
}

func NewEngine(playerID string, notifier Notifier) *Engine {
	return &Engine{
		state:    NewPlayerState(playerID),
		notifier: notifier,
		now:      time.Now,
	}
}

func (e *Engine) Snapshot() PlayerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

func (e *Engine) PlayerID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.PlayerID
}

func (e *Engine) Nickname() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Nickname
}

// Click registers one manual click.
func (e *Engine) Click() {
	e.mu.Lock()
	e.state.Currency += e.state.ClickPower
	e.state.TotalClicks += e.state.ClickPower
	e.lastClick = e.now()
	notices := e.evaluateLocked()
	e.mu.Unlock()

	e.dispatch(notices)
}

// ClickFeedbackActive reports whether the last click is recent enough to
// still be animated.
func (e *Engine) ClickFeedbackActive(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.lastClick.IsZero() && now.Sub(e.lastClick) < ClickFeedback
}

// Purchase buys one unit of the upgrade. On ErrInsufficientFunds the state
// is left untouched.
func (e *Engine) Purchase(upgradeID string) error {
	e.mu.Lock()
	idx := -1
	for i := range e.state.Upgrades {
		if e.state.Upgrades[i].ID == upgradeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownUpgrade, upgradeID)
	}

	u := &e.state.Upgrades[idx]
	if e.state.Currency < float64(u.Cost) {
		e.mu.Unlock()
		e.dispatch([]Notice{{
			Level:   NoticeError,
			Kind:    NoticeInsufficientFunds,
			Subject: upgradeID,
			Message: "Недостаточно кликов!",
		}})
		return fmt.Errorf("%w: %s costs %d", ErrInsufficientFunds, upgradeID, u.Cost)
	}

	e.state.Currency -= float64(u.Cost)
	u.Owned++
	u.Cost = NextCost(u.Cost)
	switch u.Target {
	case TargetAutoClickRate:
		e.state.AutoClickRate += u.Effect
	case TargetClickPower:
		e.state.ClickPower += u.Effect
	}

	notices := []Notice{{
		Level:   NoticeSuccess,
		Kind:    NoticeUpgradePurchased,
		Subject: upgradeID,
		Message: "Куплено: " + u.Name + "!",
	}}
	notices = append(notices, e.evaluateLocked()...)
	e.mu.Unlock()

	e.dispatch(notices)
	return nil
}

// Tick applies one tenth of the per-second passive rate.
func (e *Engine) Tick() {
	e.mu.Lock()
	if e.state.AutoClickRate <= 0 {
		e.mu.Unlock()
		return
	}
	gain := e.state.AutoClickRate / TicksPerSecond
	e.state.Currency += gain
	e.state.TotalClicks += gain
	notices := e.evaluateLocked()
	e.mu.Unlock()

	e.dispatch(notices)
}

// Hydrate applies a record loaded from the persistence service. Catalog
// entries missing from the record keep their defaults.
func (e *Engine) Hydrate(p Progress) {
	e.mu.Lock()
	if p.Nickname != "" {
		e.state.Nickname = p.Nickname
	}
	e.state.TotalClicks = p.TotalClicks
	e.state.Currency = p.TotalClicks
	if p.ClickPower > 0 {
		e.state.ClickPower = p.ClickPower
	}
	e.state.AutoClickRate = p.AutoClickRate

	for i := range e.state.Upgrades {
		u := &e.state.Upgrades[i]
		owned, ok := p.Owned[u.ID]
		if !ok || owned < 0 {
			continue
		}
		u.Owned = owned
		u.Cost = CostAfter(u.BaseCost, owned)
	}
	for i := range e.state.Achievements {
		a := &e.state.Achievements[i]
		rec, ok := p.Achievements[a.ID]
		if !ok {
			continue
		}
		a.Progress = rec.Progress
		a.Unlocked = a.Unlocked || rec.Unlocked
	}
	notices := e.evaluateLocked()
	e.mu.Unlock()

	e.dispatch(notices)
}

func (e *Engine) SetNickname(nickname string) {
	e.mu.Lock()
	e.state.Nickname = nickname
	e.mu.Unlock()
}

func (e *Engine) dispatch(notices []Notice) {
	if e.notifier == nil {
		return
	}
	for _, n := range notices {
		e.notifier.Notify(n)
	}
}
