package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/vytor/betterank/internal/models"
)

// RenderDecks prints one row per deck with its due and total card counts.
func RenderDecks(w io.Writer, decks []models.DeckSummary) error {
	if len(decks) == 0 {
		_, err := fmt.Fprintln(w, "No decks yet. Create one with deck-create.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDUE\tTOTAL")
	for _, d := range decks {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", d.ID, d.Name, d.Due, d.Total)
	}
	return tw.Flush()
}

// RenderCards prints one row per card with its deck and next review time.
func RenderCards(w io.Writer, cards []models.Flashcard) error {
	if len(cards) == 0 {
		_, err := fmt.Fprintln(w, "No cards.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDECK\tNEXT REVIEW\tFRONT")
	for _, c := range cards {
		deck := "-"
		if c.DeckID != nil {
			deck = strconv.FormatInt(*c.DeckID, 10)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, deck, c.NextReviewAt.Local().Format("2006-01-02 15:04"), oneLine(c.Front))
	}
	return tw.Flush()
}

// RenderCard prints both sides of a single card.
func RenderCard(w io.Writer, c models.Flashcard) error {
	_, err := fmt.Fprintf(w, "card %d (interval %dd, next review %s)\nQ: %s\nA: %s\n",
		c.ID, c.Interval, c.NextReviewAt.Local().Format("2006-01-02 15:04"), c.Front, c.Back)
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RenderDrafts previews generated cards before they are saved.
func RenderDrafts(w io.Writer, drafts []models.CardDraft) error {
	if len(drafts) == 0 {
		_, err := fmt.Fprintln(w, "No cards were generated.")
		return err
	}
	for i, d := range drafts {
		if _, err := fmt.Fprintf(w, "%2d. Q: %s\n    A: %s\n", i+1, d.Front, d.Back); err != nil {
			return err
		}
	}
	return nil
}
