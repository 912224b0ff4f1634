package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vytor/flashdeck/internal/services"
)

func parseDeckID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid deck id %q", arg)
	}
	return id, nil
}

func newDecksCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decks",
		Short: "List decks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			decks, err := app().decks.ListDecks(cmd.Context())
			if err != nil {
				return err
			}
			if len(decks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No decks yet. Create one with: flashdeck add-deck NAME")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
			for _, d := range decks {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", d.ID, d.Name, d.Description)
			}
			return tw.Flush()
		},
	}
}

func newAddDeckCmd(app func() *app) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add-deck NAME",
		Short: "Create a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deck, err := app().decks.CreateDeck(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created deck %d: %s\n", deck.ID, deck.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "deck description")
	return cmd
}

func newAddCardCmd(app func() *app) *cobra.Command {
	var front, back, notes string
	cmd := &cobra.Command{
		Use:   "add-card DECK_ID",
		Short: "Add a flashcard to a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deckID, err := parseDeckID(args[0])
			if err != nil {
				return err
			}
			card, err := app().decks.CreateFlashcard(cmd.Context(), deckID, services.FlashcardInput{
				Front: &front,
				Back:  &back,
				Notes: &notes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added card %d to deck %d\n", card.ID, deckID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&front, "front", "f", "", "question side (required)")
	cmd.Flags().StringVarP(&back, "back", "b", "", "answer side (required)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "extra notes shown with the answer")
	_ = cmd.MarkFlagRequired("front")
	_ = cmd.MarkFlagRequired("back")
	return cmd
}

func newCardsCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cards DECK_ID",
		Short: "List the cards of a deck with their schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deckID, err := parseDeckID(args[0])
			if err != nil {
				return err
			}
			cards, err := app().decks.ListFlashcards(cmd.Context(), deckID)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFRONT\tREPS\tINTERVAL\tEASE\tNEXT REVIEW")
			for _, c := range cards {
				next := "now"
				if c.NextReview != nil {
					next = c.NextReview.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%.2f\t%s\n",
					c.ID, truncate(c.Front, 40), c.Repetitions, c.Interval, c.EaseFactor, next)
			}
			return tw.Flush()
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
