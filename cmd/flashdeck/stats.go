package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

func newStatsCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats DECK_ID",
		Short: "Show review statistics for a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deckID, err := parseDeckID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a := app()

			stats, err := a.decks.DeckStats(ctx, deckID)
			if err != nil {
				return err
			}
			timing, err := a.decks.ReviewTimeStats(ctx, deckID)
			if err != nil {
				return err
			}
			recent, err := a.decks.RecentSessions(ctx, deckID, 5)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cards:       %d (%d new, %d due)\n", stats.TotalCards, stats.NewCards, stats.CardsDue)
			fmt.Fprintf(out, "Mastered:    %d\n", stats.CardsMastered)
			fmt.Fprintf(out, "Struggling:  %d\n", stats.CardsStruggling)
			fmt.Fprintf(out, "Reviews:     %d (%.1f%% correct)\n", stats.TotalReviews, stats.OverallAccuracy)
			fmt.Fprintf(out, "Avg ease:    %.2f\n", stats.AvgEaseFactor)
			fmt.Fprintf(out, "Avg interval: %.1f days\n", stats.AvgInterval)
			fmt.Fprintf(out, "Best streak: %d\n", stats.BestStreak)

			if timing != nil && timing.AvgTimeSeconds > 0 {
				fmt.Fprintf(out, "Answer time: avg %.1fs, fastest %.1fs, slowest %.1fs\n",
					timing.AvgTimeSeconds, timing.FastestTime, timing.SlowestTime)
				qualities := make([]int, 0, len(timing.TimeByQuality))
				for q := range timing.TimeByQuality {
					qualities = append(qualities, q)
				}
				slices.Sort(qualities)
				for _, q := range qualities {
					fmt.Fprintf(out, "  quality %d: %.1fs\n", q, timing.TimeByQuality[q])
				}
			}

			if len(recent) > 0 {
				fmt.Fprintln(out, "\nRecent sessions:")
				for _, s := range recent {
					fmt.Fprintf(out, "  %s  %d/%d cards, %.0f%% accuracy, best streak %d\n",
						s.EndedAt.Local().Format("2006-01-02 15:04"), s.CompletedCards, s.TotalCards, s.Accuracy, s.BestStreak)
				}
			}
			return nil
		},
	}
}
