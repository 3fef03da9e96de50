package client

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/vytor/betterank/internal/models"
)

// GenerateFromText asks the backend's LLM to draft cards from text. Nothing
// is saved; see SaveDrafts.
func (c *Client) GenerateFromText(ctx context.Context, in models.GenerateFromTextRequest) (*models.GeneratedBatch, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	var batch models.GeneratedBatch
	if err := c.doJSON(ctx, http.MethodPost, "/llm/generate-from-text", in, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// GenerateFromImage drafts cards from raw image bytes.
func (c *Client) GenerateFromImage(ctx context.Context, image []byte, numCards int, deckID *int64) (*models.GeneratedBatch, error) {
	in := models.GenerateFromImageRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(image),
		NumCards:    numCards,
		DeckID:      deckID,
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	var batch models.GeneratedBatch
	if err := c.doJSON(ctx, http.MethodPost, "/llm/generate-from-image", in, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// SaveDrafts creates one card per draft in deckID, stopping at the first
// failure. The cards created so far are returned alongside the error.
func (c *Client) SaveDrafts(ctx context.Context, deckID int64, drafts []models.CardDraft) ([]models.Flashcard, error) {
	saved := make([]models.Flashcard, 0, len(drafts))
	for _, d := range drafts {
		card, err := c.CreateFlashcard(ctx, models.NewFlashcard{Front: d.Front, Back: d.Back, DeckID: &deckID})
		if err != nil {
			return saved, err
		}
		saved = append(saved, *card)
	}
	return saved, nil
}
