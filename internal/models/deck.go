package models

// Deck groups flashcards.
type Deck struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CreatedAt   *Timestamp `json:"created_at,omitempty"`
}

// NewDeck is the body of POST /decks.
type NewDeck struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description,omitempty"`
}

// DeckUpdate is the body of PUT /decks/{id}. Empty fields are left unchanged.
type DeckUpdate struct {
	Name        string `json:"name,omitempty" validate:"required_without=Description,max=200"`
	Description string `json:"description,omitempty" validate:"required_without=Name"`
}

// DeckSummary pairs a deck with its card counts for list views.
type DeckSummary struct {
	Deck
	Total int
	Due   int
}
