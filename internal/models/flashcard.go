package models

import (
	"fmt"
	"strings"
)

// Flashcard mirrors the backend's flashcard representation. The review
// session only relies on ID, Front, Back and NextReviewAt.
type Flashcard struct {
	ID             int64      `json:"id"`
	Front          string     `json:"front"`
	Back           string     `json:"back"`
	CreatedAt      *Timestamp `json:"created_at,omitempty"`
	LastReviewedAt *Timestamp `json:"last_reviewed_at,omitempty"`
	NextReviewAt   Timestamp  `json:"next_review_at"`
	ReviewCount    int        `json:"review_count"`
	EasinessFactor float64    `json:"easiness_factor"`
	Interval       int        `json:"interval"`
	Repetitions    int        `json:"repetitions"`
	DeckID         *int64     `json:"deck_id,omitempty"`
}

// NewFlashcard is the body of POST /flashcards.
type NewFlashcard struct {
	Front  string `json:"front" validate:"required"`
	Back   string `json:"back" validate:"required"`
	DeckID *int64 `json:"deck_id,omitempty"`
}

// FlashcardUpdate is the body of PUT /flashcards/{id}. Empty sides are left
// unchanged by the backend, so at least one side must be set.
type FlashcardUpdate struct {
	Front string `json:"front,omitempty" validate:"required_without=Back"`
	Back  string `json:"back,omitempty" validate:"required_without=Front"`
}

// Feedback is the learner's difficulty rating for a reviewed card.
type Feedback string

const (
	FeedbackBad  Feedback = "bad"
	FeedbackMid  Feedback = "mid"
	FeedbackGood Feedback = "good"
)

// Feedbacks lists the accepted ratings from hardest to easiest.
var Feedbacks = []Feedback{FeedbackBad, FeedbackMid, FeedbackGood}

// Valid reports whether f is one of the three accepted ratings.
func (f Feedback) Valid() bool {
	switch f {
	case FeedbackBad, FeedbackMid, FeedbackGood:
		return true
	}
	return false
}

// ParseFeedback converts user input into a Feedback.
func ParseFeedback(s string) (Feedback, error) {
	f := Feedback(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("invalid feedback %q: want bad, mid or good", s)
	}
	return f, nil
}

// ReviewRequest is the body of POST /flashcards/{id}/review.
type ReviewRequest struct {
	Feedback Feedback `json:"feedback"`
}

// Review is the backend's acknowledgement of a submitted rating.
type Review struct {
	ID          int64      `json:"id"`
	FlashcardID int64      `json:"flashcard_id"`
	ReviewAt    *Timestamp `json:"review_at,omitempty"`
	Feedback    Feedback   `json:"feedback"`
}
