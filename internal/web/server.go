package web

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/betterank/internal/errors"
	"github.com/vytor/betterank/internal/logger"
	"github.com/vytor/betterank/internal/models"
	"github.com/vytor/betterank/internal/review"
	"github.com/vytor/betterank/internal/view"
)

// Backend is what the page needs from the REST client.
type Backend interface {
	review.Backend
	DeckSummaries(ctx context.Context, limit int) ([]models.DeckSummary, error)
}

// Server serves a local review page over the backend. It keeps one review
// session per deck for as long as it runs.
type Server struct {
	backend   Backend
	templates *template.Template
	log       *logger.Logger
	sessOpts  []review.Option
	dueLimit  int

	mu       sync.Mutex
	sessions map[int64]*review.Session
}

// Option configures a Server.
type Option func(*Server)

// WithSessionOptions are applied to every review session the server starts.
func WithSessionOptions(opts ...review.Option) Option {
	return func(s *Server) {
		s.sessOpts = append(s.sessOpts, opts...)
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithDueLimit caps the card counts shown on the deck list.
func WithDueLimit(n int) Option {
	return func(s *Server) {
		s.dueLimit = n
	}
}

func NewServer(backend Backend, templates *template.Template, opts ...Option) *Server {
	s := &Server{
		backend:   backend,
		templates: templates,
		log:       logger.Default(),
		dueLimit:  100,
		sessions:  map[int64]*review.Session{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithPrefix("web")
	return s
}

type pageData map[string]any

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	s.renderStatus(w, r, http.StatusOK, name, data)
}

// renderStatus executes the template into a buffer first, so a failing
// template still gets a clean 500 instead of a half-written page.
func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	if data == nil {
		data = pageData{}
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.FromContext(r.Context()).Error("failed to render template %s: %v", name, err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.backend.DeckSummaries(r.Context(), s.dueLimit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.render(w, r, "pages/decks.html", pageData{"title": "Decks", "decks": decks})
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	deckID, ok := s.deckID(w, r)
	if !ok {
		return
	}
	sess, err := s.session(r.Context(), deckID, false)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.render(w, r, "pages/review.html", pageData{
		"title":    "Review",
		"snap":     sess.Snapshot(),
		"failures": sess.Failures(),
		"error":    r.URL.Query().Get("error"),
	})
}

func (s *Server) handleReviewAction(w http.ResponseWriter, r *http.Request) {
	deckID, ok := s.deckID(w, r)
	if !ok {
		return
	}
	log := logger.FromContext(r.Context()).WithField("deck_id", deckID)
	name := chi.URLParam(r, "action")
	target := "/decks/" + strconv.FormatInt(deckID, 10) + "/review"

	if name == "restart" {
		if _, err := s.session(r.Context(), deckID, true); err != nil {
			s.handleError(w, r, err)
			return
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	action, ok := view.ParseAction(name)
	if !ok || action == view.ActionQuit || action == view.ActionHelp {
		http.NotFound(w, r)
		return
	}
	ev := view.Event{
		Action: action,
		Front:  strings.TrimSpace(r.FormValue("front")),
		Back:   strings.TrimSpace(r.FormValue("back")),
	}
	if action == view.ActionRate {
		fb, err := models.ParseFeedback(r.FormValue("feedback"))
		if err != nil {
			s.handleError(w, r, errors.NewValidationError("feedback", err.Error()))
			return
		}
		ev.Feedback = fb
	}

	sess, err := s.session(r.Context(), deckID, false)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := view.Dispatch(r.Context(), sess, ev); err != nil {
		if statusFor(err) == http.StatusConflict || statusFor(err) == http.StatusBadRequest {
			log.Debug("%s rejected: %v", action, err)
			http.Redirect(w, r, target+"?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}
		s.handleError(w, r, err)
		return
	}
	log.Debug("%s applied", action)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) deckID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		logger.FromContext(r.Context()).Warn("invalid deck id: %s", chi.URLParam(r, "id"))
		http.Error(w, "invalid deck id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// session returns the deck's session, loading one on first use. fresh
// replaces any existing session with a newly loaded one.
func (s *Server) session(ctx context.Context, deckID int64, fresh bool) (*review.Session, error) {
	s.mu.Lock()
	sess := s.sessions[deckID]
	if sess != nil && fresh {
		delete(s.sessions, deckID)
	}
	s.mu.Unlock()

	if sess != nil {
		if !fresh {
			return sess, nil
		}
		// Let its ratings land so the reload sees the rescheduled cards.
		sess.Close()
	}

	opts := append([]review.Option{review.WithLogger(s.log)}, s.sessOpts...)
	sess = review.NewSession(s.backend, opts...)
	if err := sess.Load(ctx, deckID); err != nil {
		sess.Close()
		return nil, err
	}

	s.mu.Lock()
	if existing := s.sessions[deckID]; existing != nil {
		s.mu.Unlock()
		sess.Close()
		return existing, nil
	}
	s.sessions[deckID] = sess
	s.mu.Unlock()
	return sess, nil
}

// Close ends every session, waiting for their queued ratings.
func (s *Server) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = map[int64]*review.Session{}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, sess := range sessions {
		wg.Add(1)
		go func(sess *review.Session) {
			defer wg.Done()
			sess.Close()
		}(sess)
	}
	wg.Wait()
}
