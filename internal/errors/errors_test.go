package errors_test

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/betterank/internal/errors"
)

func TestFetchError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *errors.FetchError
		want string
	}{
		{
			name: "status only",
			err:  errors.NewFetchError("GET", "/decks/1/flashcards?due=true", 500, ""),
			want: "GET /decks/1/flashcards?due=true failed: status 500",
		},
		{
			name: "status and detail",
			err:  errors.NewFetchError("PUT", "/flashcards/3", 404, "Flashcard not found"),
			want: "PUT /flashcards/3 failed: status 404: Flashcard not found",
		},
		{
			name: "transport",
			err:  errors.NewTransportError("DELETE", "/flashcards/3", io.ErrUnexpectedEOF),
			want: "DELETE /flashcards/3 failed (unexpected EOF)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAsFetchError_Wrapped(t *testing.T) {
	base := errors.NewFetchError("POST", "/flashcards/9/review", 401, "")
	wrapped := fmt.Errorf("rate card: %w", base)

	fe, ok := errors.AsFetchError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "/flashcards/9/review", fe.Path)
	assert.True(t, errors.IsUnauthorized(wrapped))

	_, ok = errors.AsFetchError(errors.ErrNoCurrentCard)
	assert.False(t, ok)
	assert.True(t, errors.IsFetchError(wrapped))
	assert.False(t, errors.IsFetchError(nil))
}

func TestTransportError_Unwraps(t *testing.T) {
	err := errors.NewTransportError("GET", "/me", io.EOF)
	assert.True(t, errors.Is(err, io.EOF))
}
