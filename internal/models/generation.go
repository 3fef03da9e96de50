package models

// CardDraft is a generated card that has not been saved yet.
type CardDraft struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
}

// GenerateFromTextRequest is the body of POST /llm/generate-from-text.
type GenerateFromTextRequest struct {
	Text     string `json:"text" validate:"required"`
	NumCards int    `json:"num_cards" validate:"min=1,max=50"`
	DeckID   *int64 `json:"deck_id,omitempty"`
}

// GenerateFromImageRequest is the body of POST /llm/generate-from-image.
type GenerateFromImageRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required,base64"`
	NumCards    int    `json:"num_cards" validate:"min=1,max=50"`
	DeckID      *int64 `json:"deck_id,omitempty"`
}

// GeneratedBatch is the response of both generation endpoints.
type GeneratedBatch struct {
	Flashcards []CardDraft `json:"flashcards"`
	Message    string      `json:"message"`
}
