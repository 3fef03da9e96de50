package flashcard

import (
	"math"
	"time"

	"github.com/vytor/betterank/internal/models"
)

const (
	minEase     = 1.3
	defaultEase = 2.5
	day         = 24 * time.Hour
)

// quality is the SM-2 grade the backend assigns each rating.
var quality = map[models.Feedback]int{
	models.FeedbackBad:  0,
	models.FeedbackMid:  3,
	models.FeedbackGood: 5,
}

// ApplyReview reschedules card with the backend's SM-2 variant: a bad rating
// resets the streak to a one day interval, anything else adjusts the
// easiness factor and grows the interval 1, 6, then interval*EF days.
func ApplyReview(card models.Flashcard, feedback models.Feedback, now time.Time) models.Flashcard {
	q := quality[feedback]
	ef := card.EasinessFactor
	if ef == 0 {
		ef = defaultEase
	}

	if q == 0 {
		card.Repetitions = 0
		card.Interval = 1
	} else {
		ef += 0.1 - float64(5-q)*(0.08+float64(5-q)*0.02)
		if ef < minEase {
			ef = minEase
		}
		switch card.Repetitions {
		case 0:
			card.Interval = 1
		case 1:
			card.Interval = 6
		default:
			card.Interval = int(math.RoundToEven(float64(card.Interval) * ef))
		}
		card.Repetitions++
	}

	card.EasinessFactor = ef
	card.NextReviewAt = models.NewTimestamp(now.Add(time.Duration(card.Interval) * day))
	reviewed := models.NewTimestamp(now)
	card.LastReviewedAt = &reviewed
	card.ReviewCount++
	return card
}

// NextIntervals reports how many days each rating would push card out.
func NextIntervals(card models.Flashcard) map[models.Feedback]int {
	out := make(map[models.Feedback]int, len(models.Feedbacks))
	for _, fb := range models.Feedbacks {
		out[fb] = ApplyReview(card, fb, time.Time{}).Interval
	}
	return out
}
