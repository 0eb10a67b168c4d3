package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type options struct {
	players int
	rounds  int
	names   []string
	seed    int64
	bots    []string
	profile string
	verbose bool
}

func (o *options) validate() error {
	if o.players < 1 || o.players > 6 {
		return fmt.Errorf("invalid player count (must be between 1-6 inclusive): %d", o.players)
	}
	if o.rounds < 1 || o.rounds > 9 {
		return fmt.Errorf("invalid round count (must be between 1-9 inclusive): %d", o.rounds)
	}
	if len(o.names) > o.players {
		return fmt.Errorf("%d names given for %d players", len(o.names), o.players)
	}
	return nil
}

// seatNames fills in default names for seats not named on the command line.
func (o *options) seatNames() []string {
	names := make([]string, o.players)
	for i := range names {
		if i < len(o.names) && strings.TrimSpace(o.names[i]) != "" {
			names[i] = strings.TrimSpace(o.names[i])
		} else {
			names[i] = fmt.Sprintf("Player %d", i+1)
		}
	}
	return names
}

func newCmd(opts *options) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SHUFFLE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "strategy-shuffle",
		Short:         "A leadership and influence card game for the terminal.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts)
		},
	}

	fs := cmd.PersistentFlags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.IntVarP(&opts.players, "players", "p", 2, "number of players, 1-6 (env: SHUFFLE_PLAYERS)")
	fs.IntVarP(&opts.rounds, "rounds", "r", 5, "number of rounds, 1-9 (env: SHUFFLE_ROUNDS)")
	fs.StringSliceVarP(&opts.names, "names", "n", nil, "comma-separated player names (env: SHUFFLE_NAMES)")
	fs.Int64Var(&opts.seed, "seed", 0, "seed for scenario order and random bots, 0 picks one (env: SHUFFLE_SEED)")
	fs.StringArrayVar(&opts.bots, "bot", nil, "seat a bot as name=random|greedy|llm, repeatable (env: SHUFFLE_BOT)")
	fs.StringVar(&opts.profile, "profile", "", "path to a YAML leadership profile (env: SHUFFLE_PROFILE)")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug events to SHUFFLE_LOG_FILE (env: SHUFFLE_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
	})

	// Environment values fill in only after parsing, so a flag on the
	// command line replaces them instead of appending to list flags.
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		fs.VisitAll(func(f *pflag.Flag) {
			if err != nil || f.Changed {
				return
			}
			if v.IsSet(f.Name) {
				err = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
			}
		})
		return err
	}

	cmd.AddCommand(newPlayCmd(opts), newSimulateCmd(opts), newJournalCmd())

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("strategy-shuffle v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
