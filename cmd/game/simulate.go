package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tatianab/strategy-shuffle/internal/bot"
	"github.com/tatianab/strategy-shuffle/internal/models"
)

func newSimulateCmd(opts *options) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a whole game between bots and print the results",
		Long: "Play a whole game between bots and print the results.\n" +
			"Seats without a --bot assignment play greedy.",
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			for _, name := range names {
				if _, ok := seats[name]; !ok {
					seats[name] = bot.KindGreedy
				}
			}
			byName, err := rt.strategies(seats, names)
			if err != nil {
				return err
			}
			strategies := make([]bot.Strategy, len(names))
			for i, name := range names {
				strategies[i] = byName[name]
			}

			if _, err := rt.session.Start(names, opts.rounds); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seed %d, %d rounds\n", rt.session.Seed(), opts.rounds)
			lastRound := 0
			sum, err := bot.Autoplay(cmd.Context(), rt.session, strategies, func(r bot.TurnReport) {
				if r.Round != lastRound {
					fmt.Fprintf(out, "\n--- Round %d: %s ---\n", r.Round, r.Scenario)
					lastRound = r.Round
				}
				printTurn(out, r)
			})
			if err != nil {
				return err
			}
			printSummary(out, sum)

			if save {
				journal, err := rt.session.Journal()
				if err != nil {
					return err
				}
				if err := journal.Save(rt.cfg.SaveDir); err != nil {
					return fmt.Errorf("save journal: %w", err)
				}
				fmt.Fprintf(out, "\nJournal saved to %s\n", filepath.Join(rt.cfg.SaveDir, journal.Name))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "export the finished game to SHUFFLE_SAVE_DIR")
	return cmd
}

func printTurn(out io.Writer, r bot.TurnReport) {
	b := r.Breakdown
	tools := make([]string, len(b.Tools))
	for i, t := range b.Tools {
		tools[i] = string(t.ID)
	}
	fmt.Fprintf(out, "%s (%s): %s = %d (base %d, synergy %d, variety %d)\n",
		b.Player, r.Strategy, strings.Join(tools, ", "), b.Total, b.Base, b.Synergy, b.Variety)
	if b.Token != "" {
		fmt.Fprintf(out, "  Earned: %s\n", b.Token)
	}
	if r.Reflection != "" {
		fmt.Fprintf(out, "  Reflection: %s\n", r.Reflection)
	}
}

func printSummary(out io.Writer, sum models.Summary) {
	fmt.Fprintf(out, "\n%-18s %6s %6s %6s %6s\n", "Player", "Base", "Tokens", "Bonus", "Final")
	for _, r := range sum.Rows {
		fmt.Fprintf(out, "%-18s %6d %6d %6d %6d\n", r.Player, r.BasePoints, r.TokenCount, r.TokenBonus, r.FinalScore)
	}
	winner := sum.Winner
	if len(sum.Tied) > 0 {
		winner += " (tied with " + strings.Join(sum.Tied, ", ") + ")"
	}
	fmt.Fprintf(out, "\nWinner: %s\n", winner)
}
