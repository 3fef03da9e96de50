package view_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/betterank/internal/client"
	"github.com/vytor/betterank/internal/logger"
	"github.com/vytor/betterank/internal/review"
	"github.com/vytor/betterank/internal/testutil"
	"github.com/vytor/betterank/internal/view"
)

type LoopSuite struct {
	suite.Suite
	ctx     context.Context
	backend *testutil.FakeBackend
	deck    int64
	first   int64
	second  int64
	out     bytes.Buffer
	session *review.Session
}

func (s *LoopSuite) SetupTest() {
	s.ctx = context.Background()
	s.out.Reset()
	s.backend = testutil.NewFakeBackend(s.T())
	s.deck = s.backend.AddDeck("capitals")
	s.first = s.backend.AddCard(s.deck, "France?", "Paris", time.Now().Add(-2*time.Hour))
	s.second = s.backend.AddCard(s.deck, "Spain?", "Madrid", time.Now().Add(-time.Hour))
}

func (s *LoopSuite) run(input string) *view.Loop {
	c := client.New(s.backend.URL(), client.WithToken(s.backend.Token), client.WithLogger(logger.Discard()))
	term := view.NewTerminal(&s.out, false)
	s.session = review.NewSession(c,
		review.WithClock(testutil.NewFakeClock(time.Now())),
		review.WithRenderer(term),
		review.WithLogger(logger.Discard()),
	)
	s.Require().NoError(s.session.Load(s.ctx, s.deck))

	loop := view.NewLoop(strings.NewReader(input), term, s.session)
	s.Require().NoError(loop.Run(s.ctx))
	s.session.Close()
	loop.ReportFailures()
	return loop
}

func (s *LoopSuite) TestRevealRateQuit() {
	s.run("\n3\nq\n")

	reviews := s.backend.Reviews()
	s.Require().Len(reviews, 1)
	s.Equal(s.first, reviews[0].FlashcardID)
	s.Contains(s.out.String(), "Paris")
	s.Contains(s.out.String(), "card 2 of 2")
	s.Equal(s.second, s.session.Snapshot().CardID)
}

func (s *LoopSuite) TestInputReaderStopsAfterQuit() {
	loop := s.run("q\nleftover\n")

	s.Eventually(func() bool {
		select {
		case <-loop.ReaderExited():
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func (s *LoopSuite) TestStopsWhenFinished() {
	s.run("\n1\n\n2\n")

	s.Len(s.backend.Reviews(), 2)
	s.Contains(s.out.String(), "No more cards to review.")
	s.Equal(review.StateFinished, s.session.Snapshot().State)
}

func (s *LoopSuite) TestEndOfInputQuits() {
	s.run("\n")
	s.Equal(review.StateRevealed, s.session.Snapshot().State)
	s.Empty(s.backend.Reviews())
}

func (s *LoopSuite) TestRateBeforeReveal() {
	s.run("2\nq\n")
	s.Contains(s.out.String(), "reveal the answer first")
	s.Empty(s.backend.Reviews())
}

func (s *LoopSuite) TestUnknownKeyAndHelp() {
	s.run("x\n?\nq\n")
	s.Contains(s.out.String(), `unknown key "x"`)
	s.Contains(s.out.String(), "rate good")
}

func (s *LoopSuite) TestEditKeepsEmptySide() {
	s.run("e\nCapital of France?\n\nq\n")

	c, ok := s.backend.Card(s.first)
	s.Require().True(ok)
	s.Equal("Capital of France?", c.Front)
	s.Equal("Paris", c.Back)
	s.Equal("Capital of France?", s.session.Snapshot().Front)
}

func (s *LoopSuite) TestEditWithNothingChanged() {
	s.run("e\n\n\nq\n")
	s.Contains(s.out.String(), "nothing changed")
}

func (s *LoopSuite) TestDeleteNeedsConfirmation() {
	s.run("d\nn\nd\ny\nq\n")

	_, ok := s.backend.Card(s.first)
	s.False(ok)
	snap := s.session.Snapshot()
	s.Equal(s.second, snap.CardID)
	s.Equal(1, snap.Total)
}

func (s *LoopSuite) TestFailedRatingIsReported() {
	s.backend.FailNext("POST", fmt.Sprintf("/flashcards/%d/review", s.first), 500)
	s.run("\n3\n\n3\n")

	s.Equal(1, strings.Count(s.out.String(), "was not saved"))
	s.Len(s.backend.Reviews(), 1)
}

func TestLoopSuite(t *testing.T) {
	suite.Run(t, new(LoopSuite))
}
