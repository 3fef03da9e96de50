package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the review session and the client bootstrap.
var (
	ErrNoCurrentCard = stderrors.New("no current card")
	ErrNotRevealed   = stderrors.New("card has not been revealed")
	ErrCardChanged   = stderrors.New("current card changed while request was in flight")
	ErrNoToken       = stderrors.New("not logged in")
	ErrTokenExpired  = stderrors.New("session token expired")
	ErrClosed        = stderrors.New("session closed")
)

// FetchError is the one recognized kind of remote failure: a request that did
// not come back with a 2xx status. Transport failures are reported as a
// FetchError with Status 0 and the cause in Err.
type FetchError struct {
	Method  string // HTTP method of the failing request
	Path    string // request path, including query
	Status  int    // HTTP status code, 0 when no response was received
	Message string // server "detail" or a truncated body
	Err     error  // underlying transport or decode error (optional)
}

// Error implements the error interface
func (e *FetchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s failed", e.Method, e.Path)
	if e.Status != 0 {
		fmt.Fprintf(&sb, ": status %d", e.Status)
	}
	if e.Message != "" {
		fmt.Fprintf(&sb, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, " (%v)", e.Err)
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a FetchError for a non-success response.
func NewFetchError(method, path string, status int, message string) *FetchError {
	return &FetchError{Method: method, Path: path, Status: status, Message: message}
}

// NewTransportError creates a FetchError for a request that never got a response.
func NewTransportError(method, path string, err error) *FetchError {
	return &FetchError{Method: method, Path: path, Err: err}
}

// AsFetchError reports whether err is, or wraps, a FetchError.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if stderrors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsFetchError reports whether err is, or wraps, a FetchError.
func IsFetchError(err error) bool {
	_, ok := AsFetchError(err)
	return ok
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	fe, ok := AsFetchError(err)
	return ok && fe.Status == 401
}

// ValidationError is returned when caller input fails validation before any
// request is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// Is and As re-export the standard library helpers so callers importing this
// package under the name errors do not need a second import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func New(text string) error { return stderrors.New(text) }
