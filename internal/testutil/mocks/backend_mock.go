package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/betterank/internal/models"
)

// MockBackend is a mock implementation of review.Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) DeckFlashcards(ctx context.Context, deckID int64, due bool, limit int) ([]models.Flashcard, error) {
	args := m.Called(ctx, deckID, due, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Flashcard), args.Error(1)
}

func (m *MockBackend) UpdateFlashcard(ctx context.Context, id int64, in models.FlashcardUpdate) (*models.Flashcard, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flashcard), args.Error(1)
}

func (m *MockBackend) DeleteFlashcard(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBackend) ReviewFlashcard(ctx context.Context, id int64, feedback models.Feedback) (*models.Review, error) {
	args := m.Called(ctx, id, feedback)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}
