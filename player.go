package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/TheRealTwizzy/clicker/internal/game"
	"github.com/TheRealTwizzy/clicker/internal/wire"
)

var (
	errPlayerNotFound  = errors.New("player not found")
	errScoreOutOfRange = errors.New("score out of range")
)

// maxStoredScore is the largest integer a JSON number carries exactly.
const maxStoredScore = 1<<53 - 1

func storedScore(v float64) (int64, error) {
	t := math.Trunc(v)
	if math.IsNaN(t) || t < 0 || t > maxStoredScore {
		return 0, errScoreOutOfRange
	}
	return int64(t), nil
}

type playerRow struct {
	PlayerID      string  `db:"player_id"`
	Nickname      string  `db:"nickname"`
	TotalClicks   int64   `db:"total_clicks"`
	ClickPower    int64   `db:"click_power"`
	AutoClickRate float64 `db:"auto_click_rate"`
	Upgrades      string  `db:"upgrades"`
	Achievements  string  `db:"achievements"`
}

const playerColumns = `player_id, nickname, total_clicks, click_power, auto_click_rate, upgrades, achievements`

func (p playerRow) record() wire.PlayerRecord {
	rec := wire.PlayerRecord{
		Nickname:      p.Nickname,
		TotalClicks:   p.TotalClicks,
		ClickPower:    p.ClickPower,
		AutoClickRate: p.AutoClickRate,
		Upgrades:      []wire.UpgradeOwned{},
		Achievements:  []wire.AchievementProgress{},
	}
	if p.Upgrades != "" {
		_ = json.Unmarshal([]byte(p.Upgrades), &rec.Upgrades)
	}
	if p.Achievements != "" {
		_ = json.Unmarshal([]byte(p.Achievements), &rec.Achievements)
	}
	if rec.Upgrades == nil {
		rec.Upgrades = []wire.UpgradeOwned{}
	}
	if rec.Achievements == nil {
		rec.Achievements = []wire.AchievementProgress{}
	}
	return rec
}

func LoadPlayer(ctx context.Context, db *sqlx.DB, playerID string) (*playerRow, error) {
	var p playerRow
	err := db.GetContext(ctx, &p, db.Rebind(`
		SELECT `+playerColumns+`
		FROM players
		WHERE player_id = ?
	`), playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RegisterPlayer inserts a fresh record unless one already exists. The
// boolean reports whether a row was created.
func RegisterPlayer(ctx context.Context, db *sqlx.DB, playerID string, nickname string) (*playerRow, bool, error) {
	if nickname == "" {
		nickname = game.DefaultNickname
	}
	res, err := db.ExecContext(ctx, db.Rebind(`
		INSERT INTO players (player_id, nickname, upgrades, achievements)
		VALUES (?, ?, '[]', '[]')
		ON CONFLICT (player_id) DO NOTHING
	`), playerID, nickname)
	if err != nil {
		return nil, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if n == 0 {
		return nil, false, nil
	}
	p, err := LoadPlayer(ctx, db, playerID)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// UpdatePlayer applies only the fields present in patch and refreshes
// updated_at. Scores are truncated to integers as stored.
func UpdatePlayer(ctx context.Context, db *sqlx.DB, patch wire.PlayerPatch) (*playerRow, error) {
	sets := []string{}
	args := []interface{}{}

	if patch.Nickname != nil {
		sets = append(sets, "nickname = ?")
		args = append(args, *patch.Nickname)
	}
	if patch.TotalClicks != nil {
		v, err := storedScore(*patch.TotalClicks)
		if err != nil {
			return nil, fmt.Errorf("totalClicks: %w", err)
		}
		sets = append(sets, "total_clicks = ?")
		args = append(args, v)
	}
	if patch.ClickPower != nil {
		v, err := storedScore(*patch.ClickPower)
		if err != nil {
			return nil, fmt.Errorf("clickPower: %w", err)
		}
		sets = append(sets, "click_power = ?")
		args = append(args, v)
	}
	if patch.AutoClickRate != nil {
		sets = append(sets, "auto_click_rate = ?")
		args = append(args, *patch.AutoClickRate)
	}
	if len(patch.Upgrades) > 0 {
		sets = append(sets, "upgrades = ?")
		args = append(args, string(patch.Upgrades))
	}
	if len(patch.Achievements) > 0 {
		sets = append(sets, "achievements = ?")
		args = append(args, string(patch.Achievements))
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, patch.PlayerID)

	var p playerRow
	err := db.QueryRowxContext(ctx, db.Rebind(`
		UPDATE players
		SET `+strings.Join(sets, ", ")+`
		WHERE player_id = ?
		RETURNING `+playerColumns), args...).StructScan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
