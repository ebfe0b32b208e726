package main

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/TheRealTwizzy/clicker/internal/wire"
)

type leaderboardRow struct {
	Nickname      string  `db:"nickname"`
	TotalClicks   int64   `db:"total_clicks"`
	ClickPower    int64   `db:"click_power"`
	AutoClickRate float64 `db:"auto_click_rate"`
}

// TopPlayers returns the best limit players by total clicks. Ties keep a
// stable order by player id.
func TopPlayers(ctx context.Context, db *sqlx.DB, limit int) ([]wire.LeaderboardEntry, error) {
	rows := []leaderboardRow{}
	if err := db.SelectContext(ctx, &rows, db.Rebind(`
		SELECT nickname, total_clicks, click_power, auto_click_rate
		FROM players
		ORDER BY total_clicks DESC, player_id ASC
		LIMIT ?
	`), limit); err != nil {
		return nil, err
	}

	entries := make([]wire.LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, wire.LeaderboardEntry{
			Nickname:      r.Nickname,
			TotalClicks:   r.TotalClicks,
			ClickPower:    r.ClickPower,
			AutoClickRate: r.AutoClickRate,
		})
	}
	return entries, nil
}
