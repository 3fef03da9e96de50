package flashcard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/betterank/internal/flashcard"
	"github.com/vytor/betterank/internal/models"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestApplyReview_GoodFirstReview(t *testing.T) {
	card := models.Flashcard{EasinessFactor: 2.5, Interval: 1}

	updated := flashcard.ApplyReview(card, models.FeedbackGood, now)

	assert.Equal(t, 1, updated.Repetitions)
	assert.Equal(t, 1, updated.Interval)
	assert.InDelta(t, 2.6, updated.EasinessFactor, 1e-9)
	assert.Equal(t, 1, updated.ReviewCount)
	assert.Equal(t, now.Add(24*time.Hour), updated.NextReviewAt.Time)
	if assert.NotNil(t, updated.LastReviewedAt) {
		assert.Equal(t, now, updated.LastReviewedAt.Time)
	}
}

func TestApplyReview_GoodGrowsInterval(t *testing.T) {
	second := flashcard.ApplyReview(models.Flashcard{EasinessFactor: 2.5, Interval: 1, Repetitions: 1}, models.FeedbackGood, now)
	assert.Equal(t, 6, second.Interval)
	assert.Equal(t, 2, second.Repetitions)

	third := flashcard.ApplyReview(models.Flashcard{EasinessFactor: 2.5, Interval: 6, Repetitions: 2}, models.FeedbackGood, now)
	assert.Equal(t, 16, third.Interval)
	assert.Equal(t, 3, third.Repetitions)
}

func TestApplyReview_MidLowersEase(t *testing.T) {
	updated := flashcard.ApplyReview(models.Flashcard{EasinessFactor: 2.5}, models.FeedbackMid, now)
	assert.InDelta(t, 2.36, updated.EasinessFactor, 1e-9)
	assert.Equal(t, 1, updated.Repetitions)
}

func TestApplyReview_BadResets(t *testing.T) {
	card := models.Flashcard{EasinessFactor: 2.2, Interval: 30, Repetitions: 5, ReviewCount: 5}

	updated := flashcard.ApplyReview(card, models.FeedbackBad, now)

	assert.Equal(t, 0, updated.Repetitions)
	assert.Equal(t, 1, updated.Interval)
	assert.Equal(t, 2.2, updated.EasinessFactor)
	assert.Equal(t, 6, updated.ReviewCount)
}

func TestApplyReview_EaseFloor(t *testing.T) {
	card := models.Flashcard{EasinessFactor: 1.35, Interval: 6, Repetitions: 2}
	updated := flashcard.ApplyReview(card, models.FeedbackMid, now)
	assert.Equal(t, 1.3, updated.EasinessFactor)
	assert.Equal(t, 8, updated.Interval)
}

func TestApplyReview_MissingEaseUsesDefault(t *testing.T) {
	updated := flashcard.ApplyReview(models.Flashcard{}, models.FeedbackGood, now)
	assert.InDelta(t, 2.6, updated.EasinessFactor, 1e-9)
}

func TestNextIntervals(t *testing.T) {
	card := models.Flashcard{EasinessFactor: 2.5, Interval: 6, Repetitions: 2}
	assert.Equal(t, map[models.Feedback]int{
		models.FeedbackBad:  1,
		models.FeedbackMid:  14,
		models.FeedbackGood: 16,
	}, flashcard.NextIntervals(card))
}
