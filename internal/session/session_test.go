package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/TheRealTwizzy/clicker/internal/client"
	"github.com/TheRealTwizzy/clicker/internal/game"
	"github.com/TheRealTwizzy/clicker/internal/wire"
)

type fakeRemote struct {
	mu          sync.Mutex
	record      *wire.PlayerRecord
	loadErr     error
	saveErr     error
	registered  []wire.RegisterRequest
	saves       []wire.SaveRequest
	leaderboard []wire.LeaderboardEntry
	fetches     int
}

func (f *fakeRemote) LoadPlayer(ctx context.Context, playerID string) (*wire.PlayerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.record == nil {
		return nil, fmt.Errorf("%w: status 404", client.ErrPlayerNotFound)
	}
	rec := *f.record
	return &rec, nil
}

func (f *fakeRemote) RegisterPlayer(ctx context.Context, playerID string, nickname string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, wire.RegisterRequest{PlayerID: playerID, Nickname: nickname})
	return nil
}

func (f *fakeRemote) SavePlayer(ctx context.Context, save wire.SaveRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves = append(f.saves, save)
	return nil
}

func (f *fakeRemote) FetchLeaderboard(ctx context.Context) ([]wire.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return append([]wire.LeaderboardEntry(nil), f.leaderboard...), nil
}

func (f *fakeRemote) snapshot() (saves []wire.SaveRequest, fetches int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]wire.SaveRequest(nil), f.saves...), f.fetches
}

func newTestSession(remote Remote) *Session {
	engine := game.NewEngine("player_1700000000000_abcdef123", nil)
	return New(engine, remote, Defaults(), zerolog.Nop())
}

func TestLoadRegistersUnknownPlayer(t *testing.T) {
	remote := &fakeRemote{}
	s := newTestSession(remote)

	s.Load(context.Background())

	if len(remote.registered) != 1 {
		t.Fatalf("registered %d times", len(remote.registered))
	}
	got := remote.registered[0]
	if got.PlayerID != "player_1700000000000_abcdef123" || got.Nickname != game.DefaultNickname {
		t.Fatalf("register request: %+v", got)
	}
}

func TestLoadHydratesEngine(t *testing.T) {
	remote := &fakeRemote{record: &wire.PlayerRecord{
		Nickname:      "Neo",
		TotalClicks:   250,
		ClickPower:    2,
		AutoClickRate: 0.2,
		Upgrades:      []wire.UpgradeOwned{{ID: game.UpgradeCursor, Owned: 2}, {ID: game.UpgradeMultiplier, Owned: 1}},
		Achievements:  []wire.AchievementProgress{{ID: game.AchievementHundred, Unlocked: true, Progress: 100}},
	}}
	s := newTestSession(remote)

	s.Load(context.Background())

	state := s.Engine().Snapshot()
	if state.Nickname != "Neo" || state.Currency != 250 || state.TotalClicks != 250 {
		t.Fatalf("state: %+v", state)
	}
	cursor, _ := state.Upgrade(game.UpgradeCursor)
	if cursor.Owned != 2 || cursor.Cost != game.CostAfter(cursor.BaseCost, 2) {
		t.Fatalf("cursor: %+v", cursor)
	}
	if len(remote.registered) != 0 {
		t.Fatalf("existing player must not be registered")
	}
}

func TestLoadKeepsDefaultsOnFailure(t *testing.T) {
	remote := &fakeRemote{loadErr: errors.New("connection refused")}
	s := newTestSession(remote)

	s.Load(context.Background())

	state := s.Engine().Snapshot()
	if state.TotalClicks != 0 || state.Nickname != game.DefaultNickname {
		t.Fatalf("state changed on failed load: %+v", state)
	}
	if len(remote.registered) != 0 {
		t.Fatalf("network failure must not register")
	}
}

func TestFlushFloorsTotalClicks(t *testing.T) {
	remote := &fakeRemote{}
	s := newTestSession(remote)
	s.Engine().Hydrate(game.Progress{TotalClicks: 10, AutoClickRate: 5})
	for i := 0; i < 3; i++ {
		s.Engine().Tick()
	}

	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	saves, _ := remote.snapshot()
	if len(saves) != 1 {
		t.Fatalf("saves: %d", len(saves))
	}
	save := saves[0]
	if save.TotalClicks != 11 {
		t.Fatalf("totalClicks = %d, want 11", save.TotalClicks)
	}
	if len(save.Upgrades) != len(game.DefaultUpgrades()) || len(save.Achievements) != len(game.DefaultAchievements()) {
		t.Fatalf("save must carry the whole catalog: %+v", save)
	}
}

func TestRenameRejectsInvalidLocally(t *testing.T) {
	remote := &fakeRemote{}
	var notices []game.Notice
	engine := game.NewEngine("p", game.NotifierFunc(func(n game.Notice) { notices = append(notices, n) }))
	s := New(engine, remote, Defaults(), zerolog.Nop())

	err := s.Rename(context.Background(), "   ")
	if !errors.Is(err, game.ErrInvalidNickname) {
		t.Fatalf("err = %v", err)
	}
	saves, _ := remote.snapshot()
	if len(saves) != 0 {
		t.Fatalf("invalid nickname reached the service")
	}
	if len(notices) != 1 || notices[0].Kind != game.NoticeInvalidNickname {
		t.Fatalf("notices: %+v", notices)
	}
}

func TestRenameAdoptsAfterSave(t *testing.T) {
	remote := &fakeRemote{}
	s := newTestSession(remote)

	if err := s.Rename(context.Background(), "  Тринити "); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got := s.Engine().Nickname(); got != "Тринити" {
		t.Fatalf("nickname = %q", got)
	}
	saves, fetches := remote.snapshot()
	if len(saves) != 1 || saves[0].Nickname != "Тринити" {
		t.Fatalf("saves: %+v", saves)
	}
	if fetches != 1 {
		t.Fatalf("leaderboard not refreshed after rename")
	}
}

func TestRenameKeepsNicknameOnRemoteFailure(t *testing.T) {
	remote := &fakeRemote{saveErr: errors.New("boom")}
	s := newTestSession(remote)

	if err := s.Rename(context.Background(), "Морфеус"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got := s.Engine().Nickname(); got != game.DefaultNickname {
		t.Fatalf("nickname = %q", got)
	}
}

func TestRunSavesAndRefreshes(t *testing.T) {
	remote := &fakeRemote{leaderboard: []wire.LeaderboardEntry{
		{Nickname: "low", TotalClicks: 5},
		{Nickname: "high", TotalClicks: 500},
	}}
	tuning := Defaults()
	tuning.SaveIntervalMs = 20
	tuning.LeaderboardIntervalMs = 1000
	s := New(game.NewEngine("p", nil), remote, tuning, zerolog.Nop())
	s.Engine().Hydrate(game.Progress{AutoClickRate: 10})

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	saves, fetches := remote.snapshot()
	if len(saves) < 2 {
		t.Fatalf("expected periodic saves, got %d", len(saves))
	}
	if fetches < 1 {
		t.Fatalf("leaderboard was not fetched on start")
	}
	board := s.Leaderboard()
	if len(board) != 2 || board[0].Nickname != "high" {
		t.Fatalf("leaderboard: %+v", board)
	}
	if s.Engine().Snapshot().TotalClicks <= 0 {
		t.Fatalf("passive tick did not run")
	}
}
