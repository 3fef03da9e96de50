package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/betterank/internal/testutil"
)

type CLISuite struct {
	suite.Suite
	backend *testutil.FakeBackend
	dbPath  string
}

func (s *CLISuite) SetupTest() {
	s.backend = testutil.NewFakeBackend(s.T())
	s.dbPath = "file:" + filepath.Join(s.T().TempDir(), "betterank.db")
}

// exec runs the CLI against the fake backend and returns exit code, stdout
// and stderr.
func (s *CLISuite) exec(stdin string, args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	full := append([]string{"--api-url", s.backend.URL(), "--db", s.dbPath, "--log-level", "error"}, args...)
	code := run(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func (s *CLISuite) login() {
	code, out, errOut := s.exec("", "login", "-u", "alice", "-p", "correct horse")
	s.Require().Equal(0, code, errOut)
	s.Require().Contains(out, "logged in as alice")
}

func (s *CLISuite) TestNoCommandPrintsUsage() {
	code, _, errOut := s.exec("")
	s.Equal(2, code)
	s.Contains(errOut, "usage: betterank")
	s.Contains(errOut, "review <deck-id>")
}

func (s *CLISuite) TestUnknownCommand() {
	code, _, errOut := s.exec("", "fly")
	s.Equal(2, code)
	s.Contains(errOut, `unknown command "fly"`)
}

func (s *CLISuite) TestInvalidConfiguration() {
	code, _, errOut := s.exec("", "--due-limit", "0", "decks")
	s.Equal(2, code)
	s.Contains(errOut, "DUE_LIMIT")
}

func (s *CLISuite) TestCommandsNeedLogin() {
	code, _, errOut := s.exec("", "decks")
	s.Equal(1, code)
	s.Contains(errOut, "not logged in; run `betterank login`")
	s.Empty(s.backend.Requests())
}

func (s *CLISuite) TestLoginPromptsForMissingValues() {
	code, out, errOut := s.exec("alice\ncorrect horse\n", "login")
	s.Require().Equal(0, code, errOut)
	s.Contains(out, "password: ")

	code, out, _ = s.exec("", "whoami")
	s.Equal(0, code)
	s.Equal("alice <alice@example.com>\n", out)
}

func (s *CLISuite) TestWrongPassword() {
	code, _, errOut := s.exec("", "login", "-u", "alice", "-p", "nope")
	s.Equal(1, code)
	s.Contains(errOut, "Invalid username or password")
}

func (s *CLISuite) TestExpiredTokenIsRejected() {
	s.backend.Token = testutil.SignedToken(s.T(), "alice", time.Now().Add(-time.Minute))
	s.login()

	code, _, errOut := s.exec("", "whoami")
	s.Equal(1, code)
	s.Contains(errOut, "session token expired")
}

func (s *CLISuite) TestLogout() {
	s.login()
	code, out, _ := s.exec("", "logout")
	s.Equal(0, code)
	s.Contains(out, "logged out")

	code, _, errOut := s.exec("", "whoami")
	s.Equal(1, code)
	s.Contains(errOut, "not logged in")
}

func (s *CLISuite) TestDeckLifecycle() {
	s.login()

	code, out, errOut := s.exec("", "deck-create", "-n", "spanish", "-d", "verbs")
	s.Require().Equal(0, code, errOut)
	s.Contains(out, `created deck 1 "spanish"`)

	s.backend.AddCard(1, "hablar", "to speak", time.Now().Add(-time.Hour))
	code, out, _ = s.exec("", "decks")
	s.Equal(0, code)
	s.Contains(out, "spanish")

	code, out, _ = s.exec("", "deck-delete", "1")
	s.Equal(0, code)
	s.Contains(out, "deleted deck 1")

	code, _, errOut = s.exec("", "deck-delete", "one")
	s.Equal(1, code)
	s.Contains(errOut, `"one" is not a deck id`)
}

func (s *CLISuite) TestDeckRename() {
	deck := s.backend.AddDeck("spanish")
	s.login()

	code, out, errOut := s.exec("", "deck-rename", fmt.Sprint(deck), "-n", "espanol")
	s.Require().Equal(0, code, errOut)
	s.Contains(out, fmt.Sprintf("updated deck %d \"espanol\"", deck))

	code, _, errOut = s.exec("", "deck-rename", fmt.Sprint(deck))
	s.Equal(1, code)
	s.Contains(errOut, "name")
}

func (s *CLISuite) TestCardsAndAssignment() {
	from := s.backend.AddDeck("from")
	to := s.backend.AddDeck("to")
	card := s.backend.AddCard(from, "hablar", "to speak", time.Now().Add(-time.Hour))
	s.backend.AddCard(to, "comer", "to eat", time.Now().Add(time.Hour))
	s.login()

	code, out, errOut := s.exec("", "cards")
	s.Require().Equal(0, code, errOut)
	s.Contains(out, "hablar")
	s.Contains(out, "comer")

	code, out, _ = s.exec("", "cards", "--due")
	s.Equal(0, code)
	s.Contains(out, "hablar")
	s.NotContains(out, "comer")

	code, out, _ = s.exec("", "card", fmt.Sprint(card))
	s.Equal(0, code)
	s.Contains(out, "A: to speak")

	code, out, errOut = s.exec("", "card-assign", fmt.Sprint(card), fmt.Sprint(to))
	s.Require().Equal(0, code, errOut)
	s.Contains(out, fmt.Sprintf("moved card %d to deck %d \"to\"", card, to))

	code, out, _ = s.exec("", "cards", "--deck", fmt.Sprint(to))
	s.Equal(0, code)
	s.Contains(out, "hablar")

	code, out, _ = s.exec("", "card-unassign", fmt.Sprint(card))
	s.Equal(0, code)
	s.Contains(out, fmt.Sprintf("removed card %d from its deck", card))

	code, _, errOut = s.exec("", "card-unassign", fmt.Sprint(card))
	s.Equal(1, code)
	s.Contains(errOut, "Flashcard is not assigned to any deck")

	code, _, errOut = s.exec("", "card-assign", "x", "1")
	s.Equal(1, code)
	s.Contains(errOut, `"x" is not a card id`)
}

func (s *CLISuite) TestReview() {
	deck := s.backend.AddDeck("capitals")
	first := s.backend.AddCard(deck, "France?", "Paris", time.Now().Add(-time.Hour))
	s.login()

	code, out, errOut := s.exec("\n3\n", "review", "--no-color", fmt.Sprint(deck))
	s.Require().Equal(0, code, errOut)
	s.Contains(out, "France?")
	s.Contains(out, "Paris")
	s.Contains(out, "No more cards to review.")

	reviews := s.backend.Reviews()
	s.Require().Len(reviews, 1)
	s.Equal(first, reviews[0].FlashcardID)
}

func (s *CLISuite) TestReviewMissingDeck() {
	s.login()
	code, _, errOut := s.exec("", "review", "42")
	s.Equal(1, code)
	s.Contains(errOut, "load deck 42")
}

func (s *CLISuite) TestGeneratePreviewAndSave() {
	deck := s.backend.AddDeck("words")
	s.login()

	code, out, errOut := s.exec("", "generate", "--deck", fmt.Sprint(deck), "--text", "apple banana", "--count", "2")
	s.Require().Equal(0, code, errOut)
	s.Contains(out, "Q: What is apple?")
	s.Contains(out, "preview only")

	code, out, _ = s.exec("", "generate", "--deck", fmt.Sprint(deck), "--text", "apple banana", "--count", "2", "--save")
	s.Equal(0, code)
	s.Contains(out, "saved 2 of 2 cards")
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}
