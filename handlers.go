package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/TheRealTwizzy/clicker/internal/game"
	"github.com/TheRealTwizzy/clicker/internal/wire"
)

const maxBodyBytes = 256 * 1024

type app struct {
	db      *sqlx.DB
	cfg     Config
	log     zerolog.Logger
	schemas *requestSchemas
	journal *saveJournal
}

func registerRoutes(r *mux.Router, a *app) {
	r.HandleFunc("/health", healthHandler(a.db)).Methods(http.MethodGet)

	base := a.cfg.BasePath
	if a.cfg.Features.LeaderboardStream {
		r.HandleFunc(base+"/stream", leaderboardStreamHandler(a)).Methods(http.MethodGet)
	}
	r.HandleFunc(base, preflightHandler).Methods(http.MethodOptions)
	r.HandleFunc(base, playerGetHandler(a)).Methods(http.MethodGet)
	r.HandleFunc(base, playerRegisterHandler(a)).Methods(http.MethodPost)
	r.HandleFunc(base, playerSaveHandler(a)).Methods(http.MethodPut)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

func setCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Max-Age", "86400")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	setCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, wire.ErrorResponse{Error: msg})
}

func healthHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("db unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

func preflightHandler(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	w.WriteHeader(http.StatusOK)
}

func playerGetHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		action := query.Get("action")
		if action == "" {
			action = wire.ActionLeaderboard
		}
		if action != wire.ActionLeaderboard && action != wire.ActionPlayer {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		if action == wire.ActionLeaderboard {
			entries, err := TopPlayers(r.Context(), a.db, a.cfg.LeaderboardLimit)
			if err != nil {
				a.log.Error().Err(err).Msg("leaderboard query failed")
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, wire.LeaderboardResponse{Leaderboard: entries})
			return
		}

		playerID := strings.TrimSpace(query.Get("playerId"))
		if !isValidPlayerID(playerID) {
			writeError(w, http.StatusBadRequest, "playerId required")
			return
		}

		p, err := LoadPlayer(r.Context(), a.db, playerID)
		if errors.Is(err, errPlayerNotFound) {
			writeError(w, http.StatusNotFound, "Player not found")
			return
		}
		if err != nil {
			a.log.Error().Err(err).Str("playerId", playerID).Msg("load player failed")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, p.record())
	}
}

func playerRegisterHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := readBody(w, r)
		if !ok {
			return
		}

		var req wire.RegisterRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request: malformed JSON")
			return
		}
		req.PlayerID = strings.TrimSpace(req.PlayerID)
		if !isValidPlayerID(req.PlayerID) {
			writeError(w, http.StatusBadRequest, "playerId required")
			return
		}
		if err := validateBody(a.schemas.register, raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}

		nickname := sanitizeNickname(req.Nickname)
		if nickname == "" {
			nickname = game.DefaultNickname
		}

		p, created, err := RegisterPlayer(r.Context(), a.db, req.PlayerID, nickname)
		if err != nil {
			a.log.Error().Err(err).Str("playerId", req.PlayerID).Msg("register player failed")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !created {
			writeJSON(w, http.StatusOK, wire.MessageResponse{Message: "Player already exists"})
			return
		}
		a.log.Info().
			Str("playerId", req.PlayerID).
			Str("nickname", nickname).
			Str("ip", clientIP(r)).
			Msg("player registered")
		writeJSON(w, http.StatusCreated, p.record())
	}
}

func playerSaveHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := readBody(w, r)
		if !ok {
			return
		}

		var patch wire.PlayerPatch
		if err := json.Unmarshal(raw, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request: malformed JSON")
			return
		}
		patch.PlayerID = strings.TrimSpace(patch.PlayerID)
		if !isValidPlayerID(patch.PlayerID) {
			writeError(w, http.StatusBadRequest, "playerId required")
			return
		}
		if err := validateBody(a.schemas.save, raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}

		if patch.Nickname != nil {
			clean := sanitizeNickname(*patch.Nickname)
			if clean == "" {
				patch.Nickname = nil
			} else {
				patch.Nickname = &clean
			}
		}
		patch.Upgrades = compactJSON(patch.Upgrades)
		patch.Achievements = compactJSON(patch.Achievements)

		p, err := UpdatePlayer(r.Context(), a.db, patch)
		if errors.Is(err, errPlayerNotFound) {
			writeError(w, http.StatusNotFound, "Player not found")
			return
		}
		if errors.Is(err, errScoreOutOfRange) {
			writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}
		if err != nil {
			a.log.Error().Err(err).Str("playerId", patch.PlayerID).Msg("save player failed")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		if a.journal != nil {
			if err := a.journal.Record(patch.PlayerID, raw); err != nil {
				a.log.Warn().Err(err).Str("playerId", patch.PlayerID).Msg("journal write failed")
			}
		}
		writeJSON(w, http.StatusOK, p.record())
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: unreadable body")
		return nil, false
	}
	if len(raw) > maxBodyBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return nil, false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	return raw, true
}

// compactJSON returns nil for absent or null values so they are left
// untouched by the update.
func compactJSON(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil
	}
	return buf.Bytes()
}
