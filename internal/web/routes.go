package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware(s.log))
	r.Use(securityHeadersMiddleware)

	r.Get("/", s.handleDecks)
	r.Get("/healthz", s.handleHealth)
	r.Get("/decks/{id}/review", s.handleReview)
	r.Post("/decks/{id}/review/{action}", s.handleReviewAction)
	return r
}
