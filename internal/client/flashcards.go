package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vytor/betterank/internal/errors"
	"github.com/vytor/betterank/internal/models"
)

// ListFlashcards lists the user's cards across all decks.
func (c *Client) ListFlashcards(ctx context.Context, due bool, limit int) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	if err := c.doJSON(ctx, http.MethodGet, "/flashcards"+cardQuery(due, limit), nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *Client) GetFlashcard(ctx context.Context, id int64) (*models.Flashcard, error) {
	var card models.Flashcard
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/flashcards/%d", id), nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) CreateFlashcard(ctx context.Context, in models.NewFlashcard) (*models.Flashcard, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	var card models.Flashcard
	if err := c.doJSON(ctx, http.MethodPost, "/flashcards", in, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// UpdateFlashcard replaces the non-empty sides of a card and returns the
// server's copy.
func (c *Client) UpdateFlashcard(ctx context.Context, id int64, in models.FlashcardUpdate) (*models.Flashcard, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	var card models.Flashcard
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/flashcards/%d", id), in, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) DeleteFlashcard(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/flashcards/%d", id), nil, nil)
}

// ReviewFlashcard posts a rating. The backend reschedules the card.
func (c *Client) ReviewFlashcard(ctx context.Context, id int64, feedback models.Feedback) (*models.Review, error) {
	if !feedback.Valid() {
		return nil, errors.NewValidationError("feedback", fmt.Sprintf("%q is not bad, mid or good", feedback))
	}
	var review models.Review
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/flashcards/%d/review", id), models.ReviewRequest{Feedback: feedback}, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// RemoveFromDeck detaches a card from its deck without deleting it.
func (c *Client) RemoveFromDeck(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/flashcards/%d/deck", id), nil, nil)
}
