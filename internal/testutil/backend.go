package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/vytor/betterank/internal/flashcard"
	"github.com/vytor/betterank/internal/models"
)

// FakeBackend is an in-memory stand-in for the BetterAnk REST API, served
// over httptest. It only implements what the client exercises.
type FakeBackend struct {
	Server *httptest.Server
	Token  string

	mu       sync.Mutex
	decks    map[int64]*models.Deck
	cards    map[int64]*models.Flashcard
	order    []int64 // card ids in insertion order, the backend's storage order
	reviews  []models.Review
	requests []RecordedRequest
	failures []injectedFailure
	gate     chan struct{}
	nextID   int64
	users    map[string]string
}

// RecordedRequest is one request the fake backend saw.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type injectedFailure struct {
	method string
	path   string
	status int
}

// NewFakeBackend starts a fake backend and registers its shutdown with t.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{
		Token:  SignedToken(t, "alice", time.Now().Add(time.Hour)),
		decks:  map[int64]*models.Deck{},
		cards:  map[int64]*models.Flashcard{},
		users:  map[string]string{"alice": "correct horse"},
		nextID: 1,
	}
	fb.Server = httptest.NewServer(fb.routes())
	t.Cleanup(fb.Server.Close)
	return fb
}

// URL is the base URL to hand to client.New.
func (fb *FakeBackend) URL() string {
	return fb.Server.URL
}

func (fb *FakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(fb.record)
	r.Use(fb.inject)

	r.Post("/login", fb.handleLogin)
	r.Post("/register", fb.handleRegister)

	r.Group(func(r chi.Router) {
		r.Use(fb.requireToken)
		r.Get("/me", fb.handleMe)
		r.Delete("/me", fb.handleMessage("User account deleted successfully"))
		r.Get("/decks", fb.handleListDecks)
		r.Post("/decks", fb.handleCreateDeck)
		r.Get("/decks/{id}", fb.handleGetDeck)
		r.Put("/decks/{id}", fb.handleUpdateDeck)
		r.Delete("/decks/{id}", fb.handleDeleteDeck)
		r.Get("/decks/{id}/flashcards", fb.handleDeckFlashcards)
		r.Put("/decks/{id}/flashcard/{card}", fb.handleAddToDeck)
		r.Get("/flashcards", fb.handleListFlashcards)
		r.Post("/flashcards", fb.handleCreateFlashcard)
		r.Get("/flashcards/{id}", fb.handleGetFlashcard)
		r.Put("/flashcards/{id}", fb.handleUpdateFlashcard)
		r.Delete("/flashcards/{id}", fb.handleDeleteFlashcard)
		r.Post("/flashcards/{id}/review", fb.handleReview)
		r.Delete("/flashcards/{id}/deck", fb.handleRemoveFromDeck)
		r.Post("/llm/generate-from-text", fb.handleGenerate)
	})
	return r
}

// AddDeck stores a deck and returns its id.
func (fb *FakeBackend) AddDeck(name string) int64 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id := fb.nextID
	fb.nextID++
	fb.decks[id] = &models.Deck{ID: id, Name: name}
	return id
}

// AddCard stores a card in deckID due at nextReview and returns its id.
func (fb *FakeBackend) AddCard(deckID int64, front, back string, nextReview time.Time) int64 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id := fb.nextID
	fb.nextID++
	d := deckID
	fb.cards[id] = &models.Flashcard{ID: id, Front: front, Back: back, NextReviewAt: models.NewTimestamp(nextReview), DeckID: &d}
	fb.order = append(fb.order, id)
	return id
}

// Card returns a copy of a stored card.
func (fb *FakeBackend) Card(id int64) (models.Flashcard, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	c, ok := fb.cards[id]
	if !ok {
		return models.Flashcard{}, false
	}
	return *c, true
}

// Reviews returns the ratings received so far, in arrival order.
func (fb *FakeBackend) Reviews() []models.Review {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]models.Review(nil), fb.reviews...)
}

// Requests returns every request seen so far.
func (fb *FakeBackend) Requests() []RecordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]RecordedRequest(nil), fb.requests...)
}

// FailNext makes the next request matching method and path (without query)
// answer with status.
func (fb *FakeBackend) FailNext(method, path string, status int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failures = append(fb.failures, injectedFailure{method: method, path: path, status: status})
}

// HoldReviews blocks review posts until the returned release func is called.
func (fb *FakeBackend) HoldReviews() (release func()) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	gate := make(chan struct{})
	fb.gate = gate
	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

func (fb *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.requests = append(fb.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.RequestURI(),
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		fb.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (fb *FakeBackend) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		for i, f := range fb.failures {
			if f.method == r.Method && f.path == r.URL.Path {
				fb.failures = append(fb.failures[:i], fb.failures[i+1:]...)
				fb.mu.Unlock()
				writeDetail(w, f.status, "injected failure")
				return
			}
		}
		fb.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (fb *FakeBackend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+fb.Token {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fb *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	fb.mu.Lock()
	pw, ok := fb.users[r.PostForm.Get("username")]
	fb.mu.Unlock()
	if !ok || pw != r.PostForm.Get("password") {
		writeDetail(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	writeJSON(w, http.StatusOK, models.Token{AccessToken: fb.Token, TokenType: "bearer"})
}

func (fb *FakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, exists := fb.users[reg.Username]; exists {
		writeDetail(w, http.StatusBadRequest, "Username already exists")
		return
	}
	fb.users[reg.Username] = reg.Password
	writeJSON(w, http.StatusOK, models.User{ID: int64(len(fb.users)), Username: reg.Username, Email: reg.Email})
}

func (fb *FakeBackend) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.User{ID: 1, Username: "alice", Email: "alice@example.com"})
}

func (fb *FakeBackend) handleMessage(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Message{Message: msg})
	}
}

func (fb *FakeBackend) handleListDecks(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	decks := make([]models.Deck, 0, len(fb.decks))
	for id := int64(1); id < fb.nextID; id++ {
		if d, ok := fb.decks[id]; ok {
			decks = append(decks, *d)
		}
	}
	writeJSON(w, http.StatusOK, decks)
}

func (fb *FakeBackend) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var in models.NewDeck
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	id := fb.AddDeck(in.Name)
	fb.mu.Lock()
	fb.decks[id].Description = in.Description
	d := *fb.decks[id]
	fb.mu.Unlock()
	writeJSON(w, http.StatusOK, d)
}

func (fb *FakeBackend) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	fb.mu.Lock()
	d, found := fb.decks[id]
	fb.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusNotFound, "Deck not found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (fb *FakeBackend) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	fb.mu.Lock()
	_, found := fb.decks[id]
	delete(fb.decks, id)
	fb.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusNotFound, "Deck not found")
		return
	}
	writeJSON(w, http.StatusOK, models.Message{Message: "Deck deleted successfully"})
}

func (fb *FakeBackend) handleDeckFlashcards(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, found := fb.decks[id]; !found {
		writeDetail(w, http.StatusNotFound, "Deck not found")
		return
	}
	writeJSON(w, http.StatusOK, fb.listCards(r, func(c *models.Flashcard) bool {
		return c.DeckID != nil && *c.DeckID == id
	}))
}

func (fb *FakeBackend) handleListFlashcards(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	writeJSON(w, http.StatusOK, fb.listCards(r, func(*models.Flashcard) bool { return true }))
}

// listCards applies the due and limit query parameters to the cards keep
// accepts, in storage order. Callers hold mu.
func (fb *FakeBackend) listCards(r *http.Request, keep func(*models.Flashcard) bool) []models.Flashcard {
	due := r.URL.Query().Get("due") == "true"
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	now := time.Now()
	out := []models.Flashcard{}
	for _, cid := range fb.order {
		c, found := fb.cards[cid]
		if !found || !keep(c) {
			continue
		}
		if due && c.NextReviewAt.After(now) {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, *c)
	}
	return out
}

func (fb *FakeBackend) handleGetFlashcard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, found := fb.Card(id)
	if !found {
		writeDetail(w, http.StatusNotFound, "Flashcard not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (fb *FakeBackend) handleUpdateDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.DeckUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	d, found := fb.decks[id]
	if !found {
		writeDetail(w, http.StatusNotFound, "Deck not found")
		return
	}
	if in.Name != "" {
		d.Name = in.Name
	}
	if in.Description != "" {
		d.Description = in.Description
	}
	writeJSON(w, http.StatusOK, d)
}

func (fb *FakeBackend) handleAddToDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathID(w, r)
	if !ok {
		return
	}
	cardID, err := strconv.ParseInt(chi.URLParam(r, "card"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid id")
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	c, found := fb.cards[cardID]
	if !found {
		writeDetail(w, http.StatusNotFound, "Flashcard not found")
		return
	}
	d, found := fb.decks[deckID]
	if !found {
		writeDetail(w, http.StatusNotFound, "Deck not found")
		return
	}
	c.DeckID = &deckID
	writeJSON(w, http.StatusOK, d)
}

func (fb *FakeBackend) handleRemoveFromDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	c, found := fb.cards[id]
	if !found {
		writeDetail(w, http.StatusNotFound, "Flashcard not found")
		return
	}
	if c.DeckID == nil {
		writeDetail(w, http.StatusBadRequest, "Flashcard is not assigned to any deck")
		return
	}
	c.DeckID = nil
	writeJSON(w, http.StatusOK, models.Message{Message: "Flashcard removed from deck successfully"})
}

func (fb *FakeBackend) handleCreateFlashcard(w http.ResponseWriter, r *http.Request) {
	var in models.NewFlashcard
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	var deckID int64
	if in.DeckID != nil {
		deckID = *in.DeckID
	}
	id := fb.AddCard(deckID, in.Front, in.Back, time.Now())
	if in.DeckID == nil {
		fb.mu.Lock()
		fb.cards[id].DeckID = nil
		fb.mu.Unlock()
	}
	c, _ := fb.Card(id)
	writeJSON(w, http.StatusOK, c)
}

func (fb *FakeBackend) handleUpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.FlashcardUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	c, found := fb.cards[id]
	if !found {
		writeDetail(w, http.StatusNotFound, "Flashcard not found")
		return
	}
	if in.Front != "" {
		c.Front = in.Front
	}
	if in.Back != "" {
		c.Back = in.Back
	}
	writeJSON(w, http.StatusOK, c)
}

func (fb *FakeBackend) handleDeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, found := fb.cards[id]; !found {
		writeDetail(w, http.StatusNotFound, "Flashcard not found")
		return
	}
	delete(fb.cards, id)
	writeJSON(w, http.StatusOK, models.Message{Message: "Flashcard deleted successfully"})
}

func (fb *FakeBackend) handleReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || !in.Feedback.Valid() {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid feedback")
		return
	}

	fb.mu.Lock()
	gate := fb.gate
	fb.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	c, found := fb.cards[id]
	if !found {
		writeDetail(w, http.StatusNotFound, "Flashcard not found")
		return
	}
	*c = flashcard.ApplyReview(*c, in.Feedback, time.Now())
	rev := models.Review{ID: int64(len(fb.reviews) + 1), FlashcardID: id, Feedback: in.Feedback}
	fb.reviews = append(fb.reviews, rev)
	writeJSON(w, http.StatusOK, rev)
}

func (fb *FakeBackend) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var in models.GenerateFromTextRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	words := strings.Fields(in.Text)
	drafts := make([]models.CardDraft, 0, in.NumCards)
	for i := 0; i < in.NumCards && i < len(words); i++ {
		drafts = append(drafts, models.CardDraft{Front: "What is " + words[i] + "?", Back: words[i]})
	}
	writeJSON(w, http.StatusOK, models.GeneratedBatch{
		Flashcards: drafts,
		Message:    fmt.Sprintf("Successfully generated %d flashcards", len(drafts)),
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// SignedToken builds an HS256 token for subject expiring at exp, shaped like
// the backend's access tokens.
func SignedToken(t testing.TB, subject string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
