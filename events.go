package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/TheRealTwizzy/clicker/internal/wire"
)

const frameLeaderboard = "leaderboard"

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// leaderboardStreamHandler pushes the current ranking right after the
// upgrade and then once per stream interval until the peer goes away.
func leaderboardStreamHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := streamUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ctx := r.Context()
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		sendSnapshot := func() bool {
			entries, err := TopPlayers(ctx, a.db, a.cfg.LeaderboardLimit)
			if err != nil {
				a.log.Warn().Err(err).Msg("stream leaderboard query failed")
				return true
			}
			payload, err := json.Marshal(wire.LeaderboardFrame{
				Type:        frameLeaderboard,
				ServerTime:  time.Now().UTC().Format(time.RFC3339),
				Leaderboard: entries,
			})
			if err != nil {
				return false
			}
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			return conn.WriteMessage(websocket.TextMessage, payload) == nil
		}

		if !sendSnapshot() {
			return
		}

		ticker := time.NewTicker(a.cfg.StreamInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-closed:
				return
			case <-ticker.C:
				if !sendSnapshot() {
					return
				}
			}
		}
	}
}
