package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tatianab/strategy-shuffle/internal/bot"
	"github.com/tatianab/strategy-shuffle/internal/catalog"
	"github.com/tatianab/strategy-shuffle/internal/coach"
	"github.com/tatianab/strategy-shuffle/internal/config"
	"github.com/tatianab/strategy-shuffle/internal/engine"
	"github.com/tatianab/strategy-shuffle/internal/models"
	"github.com/tatianab/strategy-shuffle/internal/tui"
)

// app bundles what every game-running subcommand needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	closer  io.Closer
	coach   *coach.Coach
	cat     *catalog.Catalog
	session *engine.Session
}

func newApp(ctx context.Context, opts *options) (*app, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, closer, err := cfg.Logger(opts.verbose)
	if err != nil {
		return nil, err
	}

	rt := &app{cfg: cfg, logger: logger, closer: closer, cat: catalog.Default()}

	if cfg.CoachEnabled() {
		rt.coach, err = coach.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			closer.Close()
			return nil, fmt.Errorf("create coach: %w", err)
		}
	}

	sessionOpts := []engine.Option{engine.WithLogger(logger)}
	if opts.seed != 0 {
		sessionOpts = append(sessionOpts, engine.WithSeed(opts.seed))
	}
	rt.session = engine.New(rt.cat, sessionOpts...)
	return rt, nil
}

func (rt *app) Close() {
	if rt.coach != nil {
		rt.coach.Close()
	}
	rt.closer.Close()
}

// strategies builds one strategy per bot seat. Random bots derive their seed
// from the session seed so a seeded run replays exactly.
func (rt *app) strategies(seats map[string]string, names []string) (map[string]bot.Strategy, error) {
	out := make(map[string]bot.Strategy, len(seats))
	for i, name := range names {
		kind, ok := seats[name]
		if !ok {
			continue
		}
		s, err := bot.New(kind, rt.session.Seed()+int64(i)+1, rt.coach, rt.cat)
		if err != nil {
			return nil, fmt.Errorf("seat %s: %w", name, err)
		}
		out[name] = s
	}
	for name := range seats {
		if _, ok := out[name]; !ok {
			return nil, fmt.Errorf("bot seat %q does not match any player name", name)
		}
	}
	return out, nil
}

func (rt *app) loadProfile(path string) (models.Profile, error) {
	if path == "" {
		return models.DefaultProfile(), nil
	}
	return models.LoadProfile(path, rt.cat)
}

func newPlayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal (default)",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts)
		},
	}
}

func runPlay(cmd *cobra.Command, opts *options) error {
	rt, err := newApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	seats, err := bot.ParseSeats(opts.bots)
	if err != nil {
		return err
	}
	names := opts.seatNames()
	bots, err := rt.strategies(seats, names)
	if err != nil {
		return err
	}
	profile, err := rt.loadProfile(opts.profile)
	if err != nil {
		return err
	}

	rt.logger.Info("game.launch", "players", opts.players, "rounds", opts.rounds, "bots", len(bots), "coach", rt.coach != nil)

	return tui.Run(tui.Options{
		Session: rt.session,
		Coach:   rt.coach,
		Bots:    bots,
		Profile: profile,
		SaveDir: rt.cfg.SaveDir,
		Players: opts.players,
		Rounds:  opts.rounds,
		Names:   names,
		Logger:  rt.logger,
	})
}
