// Package session binds a game engine to the persistence service: it loads
// the player on start, runs the passive tick, flushes progress and keeps a
// leaderboard view fresh.
package session

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/TheRealTwizzy/clicker/internal/client"
	"github.com/TheRealTwizzy/clicker/internal/game"
	"github.com/TheRealTwizzy/clicker/internal/wire"
)

// Remote is the persistence service as seen by a session.
type Remote interface {
	LoadPlayer(ctx context.Context, playerID string) (*wire.PlayerRecord, error)
	RegisterPlayer(ctx context.Context, playerID string, nickname string) error
	SavePlayer(ctx context.Context, save wire.SaveRequest) error
	FetchLeaderboard(ctx context.Context) ([]wire.LeaderboardEntry, error)
}

type Session struct {
	engine *game.Engine
	remote Remote
	tuning Tuning
	log    zerolog.Logger

	mu          sync.RWMutex
	leaderboard []wire.LeaderboardEntry

	inflight sync.WaitGroup
}

func New(engine *game.Engine, remote Remote, tuning Tuning, logger zerolog.Logger) *Session {
	return &Session{
		engine: engine,
		remote: remote,
		tuning: tuning.sanitized(),
		log:    logger,
	}
}

func (s *Session) Engine() *game.Engine { return s.engine }

// Load hydrates the engine from the service. An unknown player is
// registered with the current nickname; any other failure is logged and the
// session keeps its defaults.
func (s *Session) Load(ctx context.Context) {
	playerID := s.engine.PlayerID()
	record, err := s.remote.LoadPlayer(ctx, playerID)
	if errors.Is(err, client.ErrPlayerNotFound) {
		if err := s.remote.RegisterPlayer(ctx, playerID, s.engine.Nickname()); err != nil {
			s.log.Error().Err(err).Str("playerId", playerID).Msg("register player failed")
			return
		}
		s.log.Info().Str("playerId", playerID).Msg("registered new player")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("playerId", playerID).Msg("load player failed")
		return
	}

	s.engine.Hydrate(progressFromRecord(record))
	s.log.Info().
		Str("playerId", playerID).
		Str("nickname", record.Nickname).
		Int64("totalClicks", record.TotalClicks).
		Msg("player loaded")
}

// Run drives the passive tick, the periodic flush and the leaderboard
// refresh until ctx is cancelled. In-flight requests are cancelled with it.
func (s *Session) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return every(ctx, game.TickInterval, s.engine.Tick)
	})
	g.Go(func() error {
		return every(ctx, s.tuning.SaveInterval(), func() {
			s.goFlush(ctx)
		})
	})
	g.Go(func() error {
		s.RefreshLeaderboard(ctx)
		return every(ctx, s.tuning.LeaderboardInterval(), func() {
			s.RefreshLeaderboard(ctx)
		})
	})

	err := g.Wait()
	s.inflight.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func every(ctx context.Context, period time.Duration, fn func()) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn()
		}
	}
}

// goFlush sends the current state without waiting for the answer.
// Overlapping saves are not ordered; the last one to land wins.
func (s *Session) goFlush(ctx context.Context) {
	save := saveRequest(s.engine.Snapshot())
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.remote.SavePlayer(ctx, save); err != nil && ctx.Err() == nil {
			s.log.Warn().Err(err).Str("playerId", save.PlayerID).Msg("save dropped")
		}
	}()
}

// Flush sends the current state and waits for the answer.
func (s *Session) Flush(ctx context.Context) error {
	return s.remote.SavePlayer(ctx, saveRequest(s.engine.Snapshot()))
}

// Rename validates nickname locally and, when valid, stores it remotely
// before adopting it. Remote failures are logged and leave the nickname
// unchanged.
func (s *Session) Rename(ctx context.Context, nickname string) error {
	valid, err := game.ValidateNickname(nickname)
	if err != nil {
		s.engine.RejectNickname(nickname)
		return err
	}

	save := saveRequest(s.engine.Snapshot())
	save.Nickname = valid
	if err := s.remote.SavePlayer(ctx, save); err != nil {
		s.log.Error().Err(err).Str("playerId", save.PlayerID).Msg("rename failed")
		return nil
	}
	s.engine.SetNickname(valid)
	s.RefreshLeaderboard(ctx)
	return nil
}

// RefreshLeaderboard replaces the local view with the service ranking.
func (s *Session) RefreshLeaderboard(ctx context.Context) {
	entries, err := s.remote.FetchLeaderboard(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn().Err(err).Msg("leaderboard refresh failed")
		}
		return
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalClicks > entries[j].TotalClicks
	})

	s.mu.Lock()
	s.leaderboard = entries
	s.mu.Unlock()
}

func (s *Session) Leaderboard() []wire.LeaderboardEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]wire.LeaderboardEntry(nil), s.leaderboard...)
}

func saveRequest(state game.PlayerState) wire.SaveRequest {
	save := wire.SaveRequest{
		PlayerID:      state.PlayerID,
		Nickname:      state.Nickname,
		TotalClicks:   int64(math.Floor(state.TotalClicks)),
		ClickPower:    state.ClickPower,
		AutoClickRate: state.AutoClickRate,
		Upgrades:      make([]wire.UpgradeOwned, 0, len(state.Upgrades)),
		Achievements:  make([]wire.AchievementProgress, 0, len(state.Achievements)),
	}
	for _, u := range state.Upgrades {
		save.Upgrades = append(save.Upgrades, wire.UpgradeOwned{ID: u.ID, Owned: u.Owned})
	}
	for _, a := range state.Achievements {
		save.Achievements = append(save.Achievements, wire.AchievementProgress{
			ID:       a.ID,
			Unlocked: a.Unlocked,
			Progress: a.Progress,
		})
	}
	return save
}

func progressFromRecord(record *wire.PlayerRecord) game.Progress {
	p := game.Progress{
		Nickname:      record.Nickname,
		TotalClicks:   float64(record.TotalClicks),
		ClickPower:    float64(record.ClickPower),
		AutoClickRate: record.AutoClickRate,
		Owned:         make(map[string]int, len(record.Upgrades)),
		Achievements:  make(map[string]game.AchievementRecord, len(record.Achievements)),
	}
	for _, u := range record.Upgrades {
		p.Owned[u.ID] = u.Owned
	}
	for _, a := range record.Achievements {
		p.Achievements[a.ID] = game.AchievementRecord{Unlocked: a.Unlocked, Progress: a.Progress}
	}
	return p
}
