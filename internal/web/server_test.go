package web_test

import (
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/betterank/internal/client"
	"github.com/vytor/betterank/internal/logger"
	"github.com/vytor/betterank/internal/models"
	"github.com/vytor/betterank/internal/review"
	"github.com/vytor/betterank/internal/testutil"
	"github.com/vytor/betterank/internal/web"
)

type ServerSuite struct {
	suite.Suite
	backend *testutil.FakeBackend
	server  *web.Server
	handler http.Handler
	deck    int64
	first   int64
	second  int64
}

func (s *ServerSuite) SetupTest() {
	s.backend = testutil.NewFakeBackend(s.T())
	s.deck = s.backend.AddDeck("capitals")
	s.first = s.backend.AddCard(s.deck, "France?", "Paris", time.Now().Add(-2*time.Hour))
	s.second = s.backend.AddCard(s.deck, "Spain?", "Madrid", time.Now().Add(-time.Hour))

	tmpl, err := web.LoadTemplates()
	s.Require().NoError(err)

	c := client.New(s.backend.URL(), client.WithToken(s.backend.Token), client.WithLogger(logger.Discard()))
	s.server = web.NewServer(c, tmpl,
		web.WithLogger(logger.Discard()),
		web.WithSessionOptions(
			review.WithClock(testutil.NewFakeClock(time.Now())),
			review.WithLogger(logger.Discard()),
		),
	)
	s.handler = s.server.Routes()
}

func (s *ServerSuite) TearDownTest() {
	s.server.Close()
}

func (s *ServerSuite) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (s *ServerSuite) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) reviewPath(action string) string {
	p := fmt.Sprintf("/decks/%d/review", s.deck)
	if action != "" {
		p += "/" + action
	}
	return p
}

func (s *ServerSuite) TestHealthz() {
	rec := s.get("/healthz")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("OK", rec.Body.String())
	s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
	s.NotEmpty(rec.Header().Get("X-Request-ID"))
}

func (s *ServerSuite) TestDeckList() {
	rec := s.get("/")
	s.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	s.Contains(body, "capitals")
	s.Contains(body, s.reviewPath(""))
}

func (s *ServerSuite) TestRevealThenRate() {
	rec := s.get(s.reviewPath(""))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "France?")
	s.NotContains(rec.Body.String(), "Paris")

	rec = s.post(s.reviewPath("reveal"), nil)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal(s.reviewPath(""), rec.Header().Get("Location"))

	rec = s.get(s.reviewPath(""))
	s.Contains(rec.Body.String(), "Paris")
	s.Contains(rec.Body.String(), `value="good"`)

	rec = s.post(s.reviewPath("rate"), url.Values{"feedback": {"good"}})
	s.Equal(http.StatusSeeOther, rec.Code)

	rec = s.get(s.reviewPath(""))
	s.Contains(rec.Body.String(), "Spain?")
	s.Contains(rec.Body.String(), "Card 2 of 2")

	s.server.Close()
	reviews := s.backend.Reviews()
	s.Require().Len(reviews, 1)
	s.Equal(s.first, reviews[0].FlashcardID)
	s.Equal(models.FeedbackGood, reviews[0].Feedback)
}

func (s *ServerSuite) TestRateBeforeRevealRedirectsWithError() {
	s.get(s.reviewPath(""))
	rec := s.post(s.reviewPath("rate"), url.Values{"feedback": {"mid"}})
	s.Equal(http.StatusSeeOther, rec.Code)
	loc := rec.Header().Get("Location")
	s.True(strings.HasPrefix(loc, s.reviewPath("")+"?error="))

	rec = s.get(loc)
	s.Contains(rec.Body.String(), "card has not been revealed")
}

func (s *ServerSuite) TestInvalidFeedbackIsBadRequest() {
	rec := s.post(s.reviewPath("rate"), url.Values{"feedback": {"great"}})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestUnknownActionIsNotFound() {
	rec := s.post(s.reviewPath("quit"), nil)
	s.Equal(http.StatusNotFound, rec.Code)
	rec = s.post(s.reviewPath("explode"), nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerSuite) TestInvalidDeckID() {
	rec := s.get("/decks/abc/review")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestMissingDeckIsNotFound() {
	rec := s.get("/decks/999/review")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "Deck not found")
}

func (s *ServerSuite) TestEditAndDelete() {
	s.get(s.reviewPath(""))

	rec := s.post(s.reviewPath("edit"), url.Values{"front": {"Capital of France?"}, "back": {""}})
	s.Equal(http.StatusSeeOther, rec.Code)
	card, ok := s.backend.Card(s.first)
	s.Require().True(ok)
	s.Equal("Capital of France?", card.Front)
	s.Equal("Paris", card.Back)

	rec = s.post(s.reviewPath("delete"), nil)
	s.Equal(http.StatusSeeOther, rec.Code)
	_, ok = s.backend.Card(s.first)
	s.False(ok)

	rec = s.get(s.reviewPath(""))
	s.Contains(rec.Body.String(), "Spain?")
	s.Contains(rec.Body.String(), "Card 1 of 1")
}

func (s *ServerSuite) TestRestartReloadsDueCards() {
	s.get(s.reviewPath(""))
	s.post(s.reviewPath("reveal"), nil)
	s.post(s.reviewPath("rate"), url.Values{"feedback": {"bad"}})
	s.post(s.reviewPath("reveal"), nil)
	s.post(s.reviewPath("rate"), url.Values{"feedback": {"good"}})

	rec := s.get(s.reviewPath(""))
	s.Contains(rec.Body.String(), "No more cards to review.")

	s.backend.AddCard(s.deck, "Italy?", "Rome", time.Now().Add(-time.Minute))
	rec = s.post(s.reviewPath("restart"), nil)
	s.Equal(http.StatusSeeOther, rec.Code)

	rec = s.get(s.reviewPath(""))
	s.Contains(rec.Body.String(), "Italy?")
	s.Len(s.backend.Reviews(), 2)
}

func (s *ServerSuite) TestUnauthorizedBackend() {
	s.backend.FailNext(http.MethodGet, "/decks", http.StatusUnauthorized)
	rec := s.get("/")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "betterank login")
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func TestLoadTemplates(t *testing.T) {
	tmpl, err := web.LoadTemplates()
	require.NoError(t, err)
	require.NotNil(t, tmpl.Lookup("pages/decks.html"))
	require.NotNil(t, tmpl.Lookup("pages/review.html"))
}

func TestTemplateFailureAnswersCleanly(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.AddDeck("capitals")
	tmpl := template.Must(template.New("pages/decks.html").Funcs(template.FuncMap{
		"fail": func() (string, error) { return "", fmt.Errorf("broken partial") },
	}).Parse(`<h1>half a page</h1>{{fail}}`))

	c := client.New(backend.URL(), client.WithToken(backend.Token), client.WithLogger(logger.Discard()))
	server := web.NewServer(c, tmpl, web.WithLogger(logger.Discard()))
	defer server.Close()
	handler := server.Routes()

	for _, path := range []string{"/", "/decks/42/review"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "half a page", path)
		assert.Contains(t, rec.Body.String(), "failed to render page", path)
	}
}
