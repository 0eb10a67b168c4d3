package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tatianab/strategy-shuffle/internal/config"
	"github.com/tatianab/strategy-shuffle/internal/models"
)

func newJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal [name]",
		Short: "List exported games, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				names, err := models.ListJournals(cfg.SaveDir)
				if err != nil {
					return err
				}
				if len(names) == 0 {
					fmt.Fprintf(out, "No journals in %s\n", cfg.SaveDir)
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			j, err := models.LoadJournal(cfg.SaveDir, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s, finished %s, %d rounds, seed %d\n",
				j.Name, j.Finished.Local().Format("2006-01-02 15:04"), j.Rounds, j.Seed)

			round := 0
			for _, t := range j.Turns {
				if t.Round != round {
					fmt.Fprintf(out, "\n--- Round %d: %s ---\n", t.Round, t.Scenario)
					round = t.Round
				}
				tools := make([]string, len(t.Tools))
				for i, id := range t.Tools {
					tools[i] = string(id)
				}
				fmt.Fprintf(out, "%s: %s = %d\n", t.Player, strings.Join(tools, ", "), t.Score.Total)
				if t.Token != "" {
					fmt.Fprintf(out, "  Earned: %s\n", t.Token)
				}
				if t.Reflection != "" {
					fmt.Fprintf(out, "  Reflection: %s\n", t.Reflection)
				}
			}
			printSummary(out, j.Summary)
			return nil
		},
	}
	return cmd
}
