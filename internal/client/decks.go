package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vytor/betterank/internal/models"
)

func (c *Client) ListDecks(ctx context.Context, limit int) ([]models.Deck, error) {
	path := "/decks"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var decks []models.Deck
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &decks); err != nil {
		return nil, err
	}
	return decks, nil
}

func (c *Client) GetDeck(ctx context.Context, id int64) (*models.Deck, error) {
	var deck models.Deck
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/decks/%d", id), nil, &deck); err != nil {
		return nil, err
	}
	return &deck, nil
}

func (c *Client) CreateDeck(ctx context.Context, in models.NewDeck) (*models.Deck, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	var deck models.Deck
	if err := c.doJSON(ctx, http.MethodPost, "/decks", in, &deck); err != nil {
		return nil, err
	}
	return &deck, nil
}

func (c *Client) UpdateDeck(ctx context.Context, id int64, in models.DeckUpdate) (*models.Deck, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	var deck models.Deck
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/decks/%d", id), in, &deck); err != nil {
		return nil, err
	}
	return &deck, nil
}

// AddToDeck moves a card into a deck and returns the deck.
func (c *Client) AddToDeck(ctx context.Context, deckID, cardID int64) (*models.Deck, error) {
	var deck models.Deck
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/decks/%d/flashcard/%d", deckID, cardID), nil, &deck); err != nil {
		return nil, err
	}
	return &deck, nil
}

func (c *Client) DeleteDeck(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/decks/%d", id), nil, nil)
}

// DeckFlashcards lists the cards of a deck, optionally only those due now.
// The backend returns them in storage order; callers sort as they need.
func (c *Client) DeckFlashcards(ctx context.Context, deckID int64, due bool, limit int) ([]models.Flashcard, error) {
	path := fmt.Sprintf("/decks/%d/flashcards", deckID) + cardQuery(due, limit)
	var cards []models.Flashcard
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// DeckSummaries fetches every deck with its total and due card counts, the
// way the deck page shows them.
func (c *Client) DeckSummaries(ctx context.Context, limit int) ([]models.DeckSummary, error) {
	decks, err := c.ListDecks(ctx, 0)
	if err != nil {
		return nil, err
	}
	out := make([]models.DeckSummary, 0, len(decks))
	for _, d := range decks {
		all, err := c.DeckFlashcards(ctx, d.ID, false, limit)
		if err != nil {
			return nil, err
		}
		due, err := c.DeckFlashcards(ctx, d.ID, true, limit)
		if err != nil {
			return nil, err
		}
		out = append(out, models.DeckSummary{Deck: d, Total: len(all), Due: len(due)})
	}
	return out, nil
}

func cardQuery(due bool, limit int) string {
	q := url.Values{}
	if due {
		q.Set("due", "true")
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
