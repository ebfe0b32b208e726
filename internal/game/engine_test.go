package game

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

const epsilon = 1e-9

type noticeRecorder struct {
	notices []Notice
}

func (r *noticeRecorder) Notify(n Notice) { r.notices = append(r.notices, n) }

func (r *noticeRecorder) count(kind NoticeKind, subject string) int {
	n := 0
	for _, notice := range r.notices {
		if notice.Kind == kind && notice.Subject == subject {
			n++
		}
	}
	return n
}

func clickN(e *Engine, n int) {
	for i := 0; i < n; i++ {
		e.Click()
	}
}

func TestClickAddsClickPower(t *testing.T) {
	e := NewEngine("p1", nil)
	clickN(e, 3)

	s := e.Snapshot()
	if s.Currency != 3 || s.TotalClicks != 3 {
		t.Fatalf("after 3 clicks: currency=%v total=%v", s.Currency, s.TotalClicks)
	}
}

func TestPurchaseAppliesCostEscalationAndEffect(t *testing.T) {
	for _, base := range DefaultUpgrades() {
		t.Run(base.ID, func(t *testing.T) {
			e := NewEngine("p1", nil)
			e.Hydrate(Progress{TotalClicks: 100000})

			before := e.Snapshot()
			u, _ := before.Upgrade(base.ID)
			if err := e.Purchase(base.ID); err != nil {
				t.Fatalf("Purchase: %v", err)
			}
			after := e.Snapshot()
			got, _ := after.Upgrade(base.ID)

			wantCost := int64(math.Floor(float64(u.Cost) * 1.15))
			if got.Cost != wantCost {
				t.Fatalf("cost: got %d want %d", got.Cost, wantCost)
			}
			if got.Owned != u.Owned+1 {
				t.Fatalf("owned: got %d want %d", got.Owned, u.Owned+1)
			}
			if diff := before.Currency - after.Currency; math.Abs(diff-float64(u.Cost)) > epsilon {
				t.Fatalf("currency spent: got %v want %d", diff, u.Cost)
			}

			switch base.Target {
			case TargetAutoClickRate:
				if math.Abs(after.AutoClickRate-before.AutoClickRate-base.Effect) > epsilon {
					t.Fatalf("autoClickRate: %v -> %v, effect %v", before.AutoClickRate, after.AutoClickRate, base.Effect)
				}
				if after.ClickPower != before.ClickPower {
					t.Fatalf("clickPower changed: %v -> %v", before.ClickPower, after.ClickPower)
				}
			case TargetClickPower:
				if math.Abs(after.ClickPower-before.ClickPower-base.Effect) > epsilon {
					t.Fatalf("clickPower: %v -> %v, effect %v", before.ClickPower, after.ClickPower, base.Effect)
				}
				if after.AutoClickRate != before.AutoClickRate {
					t.Fatalf("autoClickRate changed: %v -> %v", before.AutoClickRate, after.AutoClickRate)
				}
			}
		})
	}
}

func TestPurchaseRejectedWhenShort(t *testing.T) {
	rec := &noticeRecorder{}
	e := NewEngine("p1", rec)
	clickN(e, 14)

	before := e.Snapshot()
	err := e.Purchase(UpgradeCursor)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Purchase: got %v want ErrInsufficientFunds", err)
	}
	after := e.Snapshot()
	if after.Currency != before.Currency || after.AutoClickRate != before.AutoClickRate {
		t.Fatalf("state changed on rejected purchase: %+v -> %+v", before, after)
	}
	u, _ := after.Upgrade(UpgradeCursor)
	if u.Owned != 0 || u.Cost != 15 {
		t.Fatalf("cursor mutated: owned=%d cost=%d", u.Owned, u.Cost)
	}
	if rec.count(NoticeInsufficientFunds, UpgradeCursor) != 1 {
		t.Fatalf("expected one insufficient funds notice, got %+v", rec.notices)
	}
}

func TestPurchaseUnknownUpgrade(t *testing.T) {
	e := NewEngine("p1", nil)
	if err := e.Purchase("grandma"); !errors.Is(err, ErrUnknownUpgrade) {
		t.Fatalf("Purchase: got %v want ErrUnknownUpgrade", err)
	}
}

func TestTenTicksAddRate(t *testing.T) {
	e := NewEngine("p1", nil)
	e.Hydrate(Progress{TotalClicks: 0, AutoClickRate: 5.3})

	for i := 0; i < TicksPerSecond; i++ {
		e.Tick()
	}
	s := e.Snapshot()
	if math.Abs(s.Currency-5.3) > epsilon || math.Abs(s.TotalClicks-5.3) > epsilon {
		t.Fatalf("after one second: currency=%v total=%v", s.Currency, s.TotalClicks)
	}
}

func TestTickNoopWithoutRate(t *testing.T) {
	e := NewEngine("p1", nil)
	e.Tick()
	s := e.Snapshot()
	if s.Currency != 0 || s.TotalClicks != 0 {
		t.Fatalf("tick without rate changed state: %+v", s)
	}
}

func TestHundredUnlocksOnceOnCrossing(t *testing.T) {
	rec := &noticeRecorder{}
	e := NewEngine("p1", rec)

	clickN(e, 99)
	if a, _ := e.Snapshot().Achievement(AchievementHundred); a.Unlocked {
		t.Fatalf("hundred unlocked at 99 clicks")
	}
	e.Click()
	a, _ := e.Snapshot().Achievement(AchievementHundred)
	if !a.Unlocked || a.Progress != 100 {
		t.Fatalf("hundred at 100 clicks: %+v", a)
	}

	// Spending currency must not re-lock it, nor re-notify.
	if err := e.Purchase(UpgradeMultiplier); err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	clickN(e, 5)
	a, _ = e.Snapshot().Achievement(AchievementHundred)
	if !a.Unlocked {
		t.Fatalf("hundred re-locked")
	}
	if got := rec.count(NoticeAchievementUnlocked, AchievementHundred); got != 1 {
		t.Fatalf("hundred notified %d times", got)
	}
	if got := rec.count(NoticeAchievementUnlocked, AchievementFirstClick); got != 1 {
		t.Fatalf("first_click notified %d times", got)
	}
}

func TestFirstUpgradeTracksOwnedSum(t *testing.T) {
	e := NewEngine("p1", nil)
	e.Hydrate(Progress{TotalClicks: 5000})

	buys := []string{UpgradeCursor, UpgradeCursor, UpgradeFactory, UpgradeMultiplier}
	for i, id := range buys {
		if err := e.Purchase(id); err != nil {
			t.Fatalf("Purchase(%s): %v", id, err)
		}
		s := e.Snapshot()
		a, _ := s.Achievement(AchievementFirstUpgrade)
		if int(a.Progress) != s.UpgradesOwned() || s.UpgradesOwned() != i+1 {
			t.Fatalf("after %d buys: progress=%v owned=%d", i+1, a.Progress, s.UpgradesOwned())
		}
		if !a.Unlocked {
			t.Fatalf("first_upgrade still locked after purchase")
		}
	}
}

func TestValidateNickname(t *testing.T) {
	if _, err := ValidateNickname(strings.Repeat("a", 20)); err != nil {
		t.Fatalf("20 chars rejected: %v", err)
	}
	if _, err := ValidateNickname(strings.Repeat("a", 21)); !errors.Is(err, ErrInvalidNickname) {
		t.Fatalf("21 chars: got %v", err)
	}
	if _, err := ValidateNickname("   "); !errors.Is(err, ErrInvalidNickname) {
		t.Fatalf("blank: got %v", err)
	}
	if got, err := ValidateNickname(strings.Repeat("ж", 20)); err != nil || got != strings.Repeat("ж", 20) {
		t.Fatalf("20 cyrillic chars: %q %v", got, err)
	}
}

func TestFirstCursorSession(t *testing.T) {
	e := NewEngine("p1", nil)

	clickN(e, 15)
	if s := e.Snapshot(); s.Currency != 15 {
		t.Fatalf("currency after 15 clicks: %v", s.Currency)
	}
	if err := e.Purchase(UpgradeCursor); err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	s := e.Snapshot()
	cursor, _ := s.Upgrade(UpgradeCursor)
	if s.Currency != 0 || cursor.Owned != 1 || cursor.Cost != 17 || math.Abs(s.AutoClickRate-0.1) > epsilon {
		t.Fatalf("after cursor: currency=%v owned=%d cost=%d rate=%v", s.Currency, cursor.Owned, cursor.Cost, s.AutoClickRate)
	}

	for i := 0; i < 100; i++ {
		e.Tick()
	}
	s = e.Snapshot()
	if math.Abs(s.Currency-1.0) > epsilon {
		t.Fatalf("currency after 10s: %v", s.Currency)
	}
	if math.Abs(s.TotalClicks-16.0) > epsilon {
		t.Fatalf("total after 10s: %v", s.TotalClicks)
	}
}

func TestHydrate(t *testing.T) {
	rec := &noticeRecorder{}
	e := NewEngine("p1", rec)
	e.Hydrate(Progress{
		Nickname:      "Neo",
		TotalClicks:   250,
		ClickPower:    3,
		AutoClickRate: 0.2,
		Owned:         map[string]int{UpgradeCursor: 2, "retired": 7},
		Achievements: map[string]AchievementRecord{
			AchievementFirstClick: {Unlocked: true, Progress: 250},
			AchievementHundred:    {Unlocked: true, Progress: 250},
		},
	})

	s := e.Snapshot()
	if s.Nickname != "Neo" || s.Currency != 250 || s.TotalClicks != 250 || s.ClickPower != 3 {
		t.Fatalf("hydrated state: %+v", s)
	}
	cursor, _ := s.Upgrade(UpgradeCursor)
	if cursor.Owned != 2 || cursor.Cost != CostAfter(15, 2) {
		t.Fatalf("cursor: %+v", cursor)
	}
	factory, _ := s.Upgrade(UpgradeFactory)
	if factory.Owned != 0 || factory.Cost != 500 {
		t.Fatalf("factory should keep defaults: %+v", factory)
	}
	if a, _ := s.Achievement(AchievementThousand); a.Unlocked || a.Progress != 250 {
		t.Fatalf("thousand: %+v", a)
	}
	if a, _ := s.Achievement(AchievementFirstUpgrade); !a.Unlocked || a.Progress != 2 {
		t.Fatalf("first_upgrade: %+v", a)
	}
	if rec.count(NoticeAchievementUnlocked, AchievementHundred) != 0 {
		t.Fatalf("restored achievement re-notified: %+v", rec.notices)
	}
}

func TestClickFeedbackWindow(t *testing.T) {
	e := NewEngine("p1", nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return base }

	if e.ClickFeedbackActive(base) {
		t.Fatalf("feedback active before any click")
	}
	e.Click()
	if !e.ClickFeedbackActive(base.Add(299 * time.Millisecond)) {
		t.Fatalf("feedback inactive right after click")
	}
	if e.ClickFeedbackActive(base.Add(ClickFeedback)) {
		t.Fatalf("feedback still active after window")
	}
}

func TestCompletionPercent(t *testing.T) {
	e := NewEngine("p1", nil)
	clickN(e, 100)
	s := e.Snapshot()
	if s.UnlockedCount() != 2 || s.CompletionPercent() != 50 {
		t.Fatalf("unlocked=%d percent=%d", s.UnlockedCount(), s.CompletionPercent())
	}
}
