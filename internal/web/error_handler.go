package web

import (
	"net/http"

	"github.com/vytor/betterank/internal/errors"
	"github.com/vytor/betterank/internal/logger"
)

// statusFor maps an error to the status the local page answers with.
func statusFor(err error) int {
	var verr *errors.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrNoCurrentCard),
		errors.Is(err, errors.ErrNotRevealed),
		errors.Is(err, errors.ErrCardChanged):
		return http.StatusConflict
	case errors.Is(err, errors.ErrClosed):
		return http.StatusGone
	}
	if fe, ok := errors.AsFetchError(err); ok {
		switch fe.Status {
		case http.StatusUnauthorized, http.StatusNotFound:
			return fe.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// handleError centralizes error responses for the page handlers.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	status := statusFor(err)
	if status >= 500 {
		log.Error("server error: %v", err)
	} else {
		log.Warn("client error: %v", err)
	}

	msg := err.Error()
	if errors.IsUnauthorized(err) {
		msg = "The backend rejected the saved token. Run `betterank login` again."
	}
	s.renderStatus(w, r, status, "pages/decks.html", pageData{"title": http.StatusText(status), "error": msg})
}
