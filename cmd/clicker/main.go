// Command clicker is a headless player: it loads (or registers) a player on
// the persistence service, clicks at a steady pace, buys upgrades according
// to a strategy and keeps the record saved.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/TheRealTwizzy/clicker/internal/client"
	"github.com/TheRealTwizzy/clicker/internal/game"
	"github.com/TheRealTwizzy/clicker/internal/session"
)

const (
	strategyBuyCheapest = "buy_cheapest"
	strategyCautious    = "cautious"
	strategyIdle        = "idle"
)

func main() {
	var (
		tuningPath   = flag.String("tuning", envOr("CLICKER_TUNING", "clicker.yaml"), "YAML tuning file")
		apiURL       = flag.String("api", os.Getenv("CLICKER_API_URL"), "persistence endpoint (overrides tuning)")
		identityPath = flag.String("identity", envOr("CLICKER_IDENTITY", session.DefaultIdentityPath()), "file holding the player id")
		nickname     = flag.String("nickname", os.Getenv("CLICKER_NICKNAME"), "nickname to claim after loading")
		cps          = flag.Float64("cps", parseEnvFloat("CLICKER_CPS", 5), "manual clicks per second")
		strategy     = flag.String("strategy", envOr("CLICKER_STRATEGY", strategyBuyCheapest), "buy_cheapest|cautious|idle")
		duration     = flag.Duration("duration", 0, "stop after this long (0 = until interrupted)")
		statusEvery  = flag.Duration("status", time.Duration(parseEnvInt("CLICKER_STATUS_SECONDS", 5))*time.Second, "status print period")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("component", "clicker").Logger()

	tuning, err := session.LoadTuning(*tuningPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load tuning")
	}
	if *apiURL != "" {
		tuning.APIBaseURL = *apiURL
	}

	playerID, err := session.LoadOrCreatePlayerID(*identityPath, time.Now())
	if err != nil {
		log.Fatal().Err(err).Str("path", *identityPath).Msg("failed to load player id")
	}

	notifier := game.NotifierFunc(func(n game.Notice) {
		ev := log.Info()
		if n.Level == game.NoticeError {
			ev = log.Warn()
		}
		ev.Str("kind", string(n.Kind)).Str("subject", n.Subject).Msg(n.Message)
	})
	engine := game.NewEngine(playerID, notifier)
	remote := client.New(tuning.APIBaseURL, &http.Client{Timeout: tuning.RequestTimeout()})
	sess := session.New(engine, remote, tuning, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	log.Info().Str("playerId", playerID).Str("api", tuning.APIBaseURL).Str("strategy", *strategy).Msg("starting")
	sess.Load(ctx)
	if name := strings.TrimSpace(*nickname); name != "" && name != engine.Nickname() {
		if err := sess.Rename(ctx, name); err != nil {
			log.Warn().Err(err).Str("nickname", name).Msg("nickname rejected")
		}
	}

	tag, err := language.Parse(tuning.Locale)
	if err != nil {
		tag = language.Russian
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sess.Run(ctx) })
	g.Go(func() error { return playLoop(ctx, engine, *cps, *strategy) })
	g.Go(func() error { return statusLoop(ctx, sess, tag, *statusEvery) })
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		log.Error().Err(err).Msg("session failed")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), tuning.RequestTimeout())
	defer cancel()
	if err := sess.Flush(flushCtx); err != nil {
		log.Error().Err(err).Msg("final save failed")
	}
	printStatus(sess, tag)
}

func playLoop(ctx context.Context, engine *game.Engine, cps float64, strategy string) error {
	if cps <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / cps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			engine.Click()
			if id := decidePurchase(engine.Snapshot(), strategy); id != "" {
				_ = engine.Purchase(id)
			}
		}
	}
}

// decidePurchase picks the upgrade to buy now, or "" to keep saving.
func decidePurchase(state game.PlayerState, strategy string) string {
	budget := state.Currency
	switch strategy {
	case strategyIdle:
		return ""
	case strategyCautious:
		budget = state.Currency * 0.5
	}

	best := ""
	var bestCost int64
	for _, u := range state.Upgrades {
		if float64(u.Cost) > budget {
			continue
		}
		if best == "" || u.Cost < bestCost {
			best, bestCost = u.ID, u.Cost
		}
	}
	return best
}

func statusLoop(ctx context.Context, sess *session.Session, tag language.Tag, every time.Duration) error {
	if every <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			printStatus(sess, tag)
		}
	}
}

func printStatus(sess *session.Session, tag language.Tag) {
	s := sess.Engine().Snapshot()
	fmt.Printf("%s  clicks %s  power %s  rate %.1f/s  achievements %d%%\n",
		s.Nickname,
		game.FormatNumber(tag, s.Currency),
		game.FormatNumber(tag, s.ClickPower),
		s.AutoClickRate,
		s.CompletionPercent(),
	)
	for i, e := range sess.Leaderboard() {
		fmt.Printf("  %2d. %-20s %s\n", i+1, e.Nickname, game.FormatNumber(tag, float64(e.TotalClicks)))
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseEnvInt(key string, fallback int) int {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	return fallback
}

func parseEnvFloat(key string, fallback float64) float64 {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
