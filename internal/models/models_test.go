package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/betterank/internal/models"
)

func TestFlashcard_DecodesNaiveTimestamps(t *testing.T) {
	body := `{"id": 4, "front": "Q", "back": "A",
		"created_at": "2025-03-01T09:30:00.123456",
		"last_reviewed_at": null,
		"next_review_at": "2025-03-02T10:00:00",
		"review_count": 2, "easiness_factor": 2.6, "interval": 6, "repetitions": 2, "deck_id": 1}`

	var card models.Flashcard
	require.NoError(t, json.Unmarshal([]byte(body), &card))

	assert.Equal(t, int64(4), card.ID)
	assert.Equal(t, time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC), card.NextReviewAt.Time)
	require.NotNil(t, card.CreatedAt)
	assert.Equal(t, 123456000, card.CreatedAt.Nanosecond())
	require.NotNil(t, card.DeckID)
	assert.Equal(t, int64(1), *card.DeckID)
}

func TestTimestamp_AcceptsRFC3339(t *testing.T) {
	var ts models.Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-02T10:00:00+02:00"`), &ts))
	assert.True(t, ts.Equal(time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)))
}

func TestTimestamp_RejectsGarbage(t *testing.T) {
	var ts models.Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &ts))
}

func TestParseFeedback(t *testing.T) {
	for _, in := range []string{"bad", "MID", " good "} {
		f, err := models.ParseFeedback(in)
		require.NoError(t, err, in)
		assert.True(t, f.Valid())
	}

	_, err := models.ParseFeedback("easy")
	assert.Error(t, err)
}
