package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("component", "clicker-server").Logger()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log.Info().
		Str("driver", cfg.StoreDriver).
		Str("basePath", cfg.BasePath).
		Int("leaderboardLimit", cfg.LeaderboardLimit).
		Bool("stream", cfg.Features.LeaderboardStream).
		Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer db.Close()
	log.Info().Str("driver", cfg.StoreDriver).Msg("store ready")

	schemas, err := loadRequestSchemas()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to compile request schemas")
	}

	a := &app{db: db, cfg: cfg, log: log, schemas: schemas}
	if cfg.Features.SaveJournal && cfg.JournalDir != "" {
		a.journal = newSaveJournal(cfg.JournalDir)
		defer a.journal.Close()
		log.Info().Str("dir", cfg.JournalDir).Msg("save journal enabled")
	}

	router := mux.NewRouter()
	registerRoutes(router, a)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server failed")
		return
	}
	log.Info().Msg("server stopped")
}
