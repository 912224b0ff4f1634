package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/session"
)

func newStudyCmd(app func() *app) *cobra.Command {
	var (
		cfg    session.Config
		sortBy string
	)
	cmd := &cobra.Command{
		Use:   "study DECK_ID",
		Short: "Start an interactive study session",
		Long: `Start an interactive study session over a deck.

For each card the front is shown first. Press Enter to reveal the back,
then rate how well you remembered it:

  0 blackout   1 wrong, familiar   2 wrong, easy once seen
  3 hard       4 good              5 perfect

Ratings of 3 or more count as correct.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deckID, err := parseDeckID(args[0])
			if err != nil {
				return err
			}
			cfg.SortBy = session.SortBy(sortBy)
			return runStudy(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), app().study, deckID, cfg)
		},
	}
	cmd.Flags().IntVar(&cfg.MaxCards, "max-cards", 0, "maximum cards in the session (0 = no limit)")
	cmd.Flags().IntVar(&cfg.MaxNewCards, "max-new", 0, "maximum never-reviewed cards (0 = no limit)")
	cmd.Flags().BoolVar(&cfg.DueOnly, "due-only", false, "only study cards that are due")
	cmd.Flags().BoolVar(&cfg.Shuffled, "shuffle", false, "shuffle the cards")
	cmd.Flags().StringVar(&sortBy, "sort", "", "order cards by dueDate, difficulty or random")
	return cmd
}

// runStudy drives one session from a line-oriented reader. Enter flips the
// card; at either prompt "s" skips it and "q" ends the session.
func runStudy(ctx context.Context, in io.Reader, out io.Writer, svc services.StudyService, deckID int64, cfg session.Config) error {
	view, err := svc.Start(ctx, deckID, cfg)
	if err != nil {
		return err
	}
	lines := bufio.NewScanner(in)
	read := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		if !lines.Scan() {
			return "", false
		}
		return strings.TrimSpace(lines.Text()), true
	}

	fmt.Fprintf(out, "Studying %d cards. Enter flips, s skips, q quits.\n", view.TotalCards)

study:
	for view.Status == session.Active.String() && view.CurrentCard != nil {
		card := view.CurrentCard
		fmt.Fprintf(out, "\n[%d/%d] %s\n", view.CurrentIndex+1, view.TotalCards, card.Front)

		line, ok := read("> ")
		if !ok {
			break
		}
		switch strings.ToLower(line) {
		case "q":
			break study
		case "s":
			if view, err = svc.Skip(ctx, view.ID); err != nil {
				return err
			}
			continue
		}

		if view, err = svc.Flip(ctx, view.ID); err != nil {
			return err
		}
		fmt.Fprintf(out, "    %s\n", card.Back)
		if card.Notes != "" {
			fmt.Fprintf(out, "    (%s)\n", card.Notes)
		}

		for {
			line, ok := read("Rate 0-5 (s skips, q quits): ")
			if !ok {
				break study
			}
			switch strings.ToLower(line) {
			case "q":
				break study
			case "s":
				if view, err = svc.Skip(ctx, view.ID); err != nil {
					return err
				}
				continue study
			}
			quality, err := strconv.Atoi(line)
			if err != nil || quality < 0 || quality > 5 {
				fmt.Fprintln(out, "Please enter a number from 0 to 5.")
				continue
			}

			res, err := svc.Rate(ctx, view.ID, quality)
			if err != nil {
				// the session is still on this card, so the same rating can be retried
				fmt.Fprintf(out, "Could not save rating: %v\n", err)
				continue
			}
			view = &res.Session
			fmt.Fprintf(out, "Next review in %s.\n", formatInterval(res.Card.Interval))
			if res.StreakMilestone {
				fmt.Fprintf(out, "%d in a row on this card!\n", res.Card.Streak)
			}
			break
		}
	}

	if view.Status == session.Active.String() {
		if view, err = svc.End(ctx, view.ID); err != nil {
			return err
		}
	}
	printSummary(out, view)
	return nil
}

func formatInterval(days float64) string {
	if days == 1 {
		return "1 day"
	}
	return strconv.FormatFloat(days, 'f', -1, 64) + " days"
}

func printSummary(out io.Writer, v *services.SessionView) {
	fmt.Fprintln(out, "\nSession complete.")
	fmt.Fprintf(out, "  Reviewed:    %d of %d\n", v.CompletedCards, v.TotalCards)
	fmt.Fprintf(out, "  Correct:     %d\n", v.CorrectCount)
	fmt.Fprintf(out, "  Wrong:       %d\n", v.WrongCount)
	fmt.Fprintf(out, "  Accuracy:    %.0f%%\n", v.Accuracy)
	fmt.Fprintf(out, "  Best streak: %d\n", v.BestStreak)
	fmt.Fprintf(out, "  Time:        %ds\n", v.ElapsedSeconds)
}
