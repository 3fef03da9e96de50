package review

import (
	"context"
	"sort"
	"sync"

	"github.com/vytor/betterank/internal/errors"
	"github.com/vytor/betterank/internal/flashcard"
	"github.com/vytor/betterank/internal/logger"
	"github.com/vytor/betterank/internal/models"
)

// Backend is the part of the REST API a session talks to.
type Backend interface {
	DeckFlashcards(ctx context.Context, deckID int64, due bool, limit int) ([]models.Flashcard, error)
	UpdateFlashcard(ctx context.Context, id int64, in models.FlashcardUpdate) (*models.Flashcard, error)
	DeleteFlashcard(ctx context.Context, id int64) error
	ReviewFlashcard(ctx context.Context, id int64, feedback models.Feedback) (*models.Review, error)
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(s *Session) {
		s.timer.clock = c
	}
}

// WithRenderer sets the single rendering boundary of the session.
func WithRenderer(r Renderer) Option {
	return func(s *Session) {
		s.renderer = r
	}
}

// WithLogger sets the session logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithDueLimit caps how many due cards Load asks for.
func WithDueLimit(n int) Option {
	return func(s *Session) {
		s.dueLimit = n
	}
}

// WithFeedbackQueueSize bounds the number of ratings waiting to be posted.
func WithFeedbackQueueSize(n int) Option {
	return func(s *Session) {
		s.feedbackSize = n
	}
}

// Session walks one deck's due cards: present the front, reveal the back,
// rate, move on. It owns the queue, the cursor and the per-card timer.
//
// Methods are safe to call from any goroutine, but the walker assumes a
// single user driving it; the only concurrent activity is the timer tick.
type Session struct {
	backend      Backend
	renderer     Renderer
	log          *logger.Logger
	dueLimit     int
	feedbackSize int
	feedback     *feedbackQueue

	mu      sync.Mutex
	deckID  int64
	queue   []models.Flashcard
	cursor  int
	state   State
	timer   cardTimer
	elapsed int
	speed   Speed
	closed  bool
}

func NewSession(backend Backend, opts ...Option) *Session {
	s := &Session{
		backend:      backend,
		renderer:     nopRenderer{},
		log:          logger.Default(),
		dueLimit:     100,
		feedbackSize: 32,
		timer:        cardTimer{clock: SystemClock{}},
		state:        StateLoading,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.feedback = newFeedbackQueue(backend, s.feedbackSize, s.log)
	s.log = s.log.WithPrefix("review")
	return s
}

// logFor prefers the request logger carried by ctx over the session's own.
func (s *Session) logFor(ctx context.Context) *logger.Logger {
	return logger.FromContextOr(ctx, s.log).WithPrefix("review")
}

// Load fetches the due cards of deckID, orders them by next review time and
// presents the first one. On failure the session is left as it was.
func (s *Session) Load(ctx context.Context, deckID int64) error {
	log := s.logFor(ctx).WithField("deck_id", deckID)

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return errors.ErrClosed
	}

	cards, err := s.backend.DeckFlashcards(ctx, deckID, true, s.dueLimit)
	if err != nil {
		log.Warn("failed to load due cards: %v", err)
		return err
	}
	sortByNextReview(cards)
	log.Info("loaded %d due cards", len(cards))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrClosed
	}
	s.deckID = deckID
	s.queue = cards
	s.cursor = 0
	s.present()
	return nil
}

// sortByNextReview orders cards soonest-due first; equal times keep the
// server's order.
func sortByNextReview(cards []models.Flashcard) {
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].NextReviewAt.Before(cards[j].NextReviewAt.Time)
	})
}

// Present shows the card under the cursor, or finishes the session when the
// queue is exhausted.
func (s *Session) Present() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrClosed
	}
	if s.state == StateLoading {
		return errors.ErrNoCurrentCard
	}
	s.present()
	return nil
}

func (s *Session) present() {
	s.timer.halt()
	s.elapsed = 0
	s.speed = ""

	if s.cursor >= len(s.queue) {
		if s.state != StateFinished {
			s.log.Info("session finished for deck %d", s.deckID)
		}
		s.state = StateFinished
		s.render()
		return
	}

	s.state = StatePresenting
	s.timer.restart(s.tick)
	s.render()
}

func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePresenting || !s.timer.current(gen) {
		return
	}
	s.elapsed = s.timer.elapsed()
	s.render()
}

// Reveal stops the timer, classifies the answer speed and shows the back.
// Revealing twice is a no-op.
func (s *Session) Reveal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrClosed
	}
	switch s.state {
	case StateRevealed:
		return nil
	case StatePresenting:
	default:
		return errors.ErrNoCurrentCard
	}

	s.elapsed = s.timer.elapsed()
	s.timer.halt()
	s.speed = ClassifySpeed(s.elapsed)
	s.state = StateRevealed
	s.render()
	return nil
}

// Rate records the learner's rating for the revealed card, moves to the next
// card and posts the rating in the background. It does not wait for the
// backend; failed posts show up in Failures. A rating accepted before Close
// is either posted or reported by Failures once Close returns.
func (s *Session) Rate(ctx context.Context, feedback models.Feedback) error {
	if !feedback.Valid() {
		return errors.NewValidationError("feedback", string(feedback)+" is not bad, mid or good")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.ErrClosed
	}
	switch s.state {
	case StateRevealed:
	case StatePresenting:
		s.mu.Unlock()
		return errors.ErrNotRevealed
	default:
		s.mu.Unlock()
		return errors.ErrNoCurrentCard
	}
	card := s.queue[s.cursor]
	s.cursor++
	s.present()
	// Queued under mu so Close cannot stop the pool between the closed
	// check and the submit.
	s.feedback.enqueue(ctx, card.ID, feedback)
	s.mu.Unlock()

	s.logFor(ctx).Debug("rated card %d %s", card.ID, feedback)
	return nil
}

// current returns the id of the card under the cursor.
func (s *Session) current() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errors.ErrClosed
	}
	if s.state != StatePresenting && s.state != StateRevealed {
		return 0, errors.ErrNoCurrentCard
	}
	return s.queue[s.cursor].ID, nil
}

// stillCurrent reports whether id is still under the cursor. Callers hold mu.
func (s *Session) stillCurrent(id int64) bool {
	return !s.closed && s.cursor < len(s.queue) && s.queue[s.cursor].ID == id
}

// EditCurrent updates the current card on the backend, swaps in the server's
// copy and presents it again.
func (s *Session) EditCurrent(ctx context.Context, front, back string) error {
	id, err := s.current()
	if err != nil {
		return err
	}

	updated, err := s.backend.UpdateFlashcard(ctx, id, models.FlashcardUpdate{Front: front, Back: back})
	if err != nil {
		s.logFor(ctx).Warn("failed to edit card %d: %v", id, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stillCurrent(id) {
		return errors.ErrCardChanged
	}
	s.queue[s.cursor] = *updated
	s.present()
	return nil
}

// DeleteCurrent deletes the current card on the backend and drops it from
// the queue. The cursor stays put, so the next card slides under it.
func (s *Session) DeleteCurrent(ctx context.Context) error {
	id, err := s.current()
	if err != nil {
		return err
	}

	if err := s.backend.DeleteFlashcard(ctx, id); err != nil {
		s.logFor(ctx).Warn("failed to delete card %d: %v", id, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stillCurrent(id) {
		return errors.ErrCardChanged
	}
	s.queue = append(s.queue[:s.cursor], s.queue[s.cursor+1:]...)
	s.present()
	return nil
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		State:   s.state,
		DeckID:  s.deckID,
		Total:   len(s.queue),
		Elapsed: s.elapsed,
		Speed:   s.speed,
	}
	if s.state == StatePresenting || s.state == StateRevealed {
		card := s.queue[s.cursor]
		snap.CardID = card.ID
		snap.Front = card.Front
		snap.Position = s.cursor + 1
		if s.state == StateRevealed {
			snap.Back = card.Back
			snap.Intervals = flashcard.NextIntervals(card)
		}
	}
	snap.PendingFeedback, snap.FailedFeedback = s.feedback.counts()
	return snap
}

func (s *Session) render() {
	s.renderer.Render(s.snapshot())
}

// Failures returns and forgets the ratings the backend did not accept.
func (s *Session) Failures() []FeedbackFailure {
	return s.feedback.drain()
}

// Close stops the timer and waits for queued ratings to be posted. The
// session cannot be used afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.timer.halt()
	s.mu.Unlock()

	s.feedback.close()
	s.log.Debug("session closed")
}
