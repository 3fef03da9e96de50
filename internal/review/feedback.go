package review

import (
	"context"
	"fmt"
	"sync"

	"github.com/vytor/betterank/internal/logger"
	"github.com/vytor/betterank/internal/models"
	"github.com/vytor/betterank/internal/worker"
)

// FeedbackFailure is a rating the backend never acknowledged.
type FeedbackFailure struct {
	FlashcardID int64
	Feedback    models.Feedback
	Err         error
}

func (f FeedbackFailure) Error() string {
	return fmt.Sprintf("rating %q for card %d not saved: %v", f.Feedback, f.FlashcardID, f.Err)
}

func (f FeedbackFailure) Unwrap() error {
	return f.Err
}

// feedbackQueue posts ratings off the UI path. One worker keeps them in the
// order they were given; failures are kept until someone drains them.
type feedbackQueue struct {
	backend Backend
	pool    *worker.Pool
	log     *logger.Logger

	mu       sync.Mutex
	pending  int
	failures []FeedbackFailure
}

func newFeedbackQueue(backend Backend, size int, log *logger.Logger) *feedbackQueue {
	q := &feedbackQueue{
		backend: backend,
		pool:    worker.NewPool("feedback", 1, size, worker.WithLogger(log)),
		log:     log,
	}
	q.pool.Start(context.Background())
	return q
}

type submitFeedbackJob struct {
	q        *feedbackQueue
	cardID   int64
	feedback models.Feedback
}

func (j *submitFeedbackJob) Name() string {
	return fmt.Sprintf("feedback card=%d %s", j.cardID, j.feedback)
}

func (j *submitFeedbackJob) Run(ctx context.Context) error {
	_, err := j.q.backend.ReviewFlashcard(ctx, j.cardID, j.feedback)
	j.q.finish(j.cardID, j.feedback, err)
	return err
}

func (q *feedbackQueue) enqueue(ctx context.Context, cardID int64, feedback models.Feedback) {
	q.mu.Lock()
	q.pending++
	q.mu.Unlock()

	job := &submitFeedbackJob{q: q, cardID: cardID, feedback: feedback}
	if err := q.pool.TrySubmit(job); err != nil {
		logger.FromContextOr(ctx, q.log).WithPrefix("review").Warn("could not queue rating for card %d: %v", cardID, err)
		q.finish(cardID, feedback, err)
	}
}

func (q *feedbackQueue) finish(cardID int64, feedback models.Feedback, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending--
	if err != nil {
		q.failures = append(q.failures, FeedbackFailure{FlashcardID: cardID, Feedback: feedback, Err: err})
	}
}

func (q *feedbackQueue) counts() (pending, failed int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending, len(q.failures)
}

func (q *feedbackQueue) drain() []FeedbackFailure {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.failures
	q.failures = nil
	return out
}

// close waits for every queued rating to be posted.
func (q *feedbackQueue) close() {
	q.pool.Stop()
}
