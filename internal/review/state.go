package review

import "github.com/vytor/betterank/internal/models"

// State is the walker's position in its lifecycle.
type State int

const (
	StateLoading State = iota
	StatePresenting
	StateRevealed
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePresenting:
		return "presenting"
	case StateRevealed:
		return "revealed"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of a session, the only thing renderers see.
type Snapshot struct {
	State    State
	DeckID   int64
	CardID   int64
	Front    string
	Back     string // empty until revealed
	Position int    // 1-based position of the current card, 0 when none
	Total    int
	Elapsed  int   // seconds on the current card, frozen at reveal
	Speed    Speed // empty until revealed

	// Intervals previews the days until the next review for each rating,
	// as the backend will schedule it. Nil until revealed.
	Intervals map[models.Feedback]int

	PendingFeedback int
	FailedFeedback  int
}

// HasCard reports whether a card is current.
func (s Snapshot) HasCard() bool {
	return s.State == StatePresenting || s.State == StateRevealed
}

// Revealed reports whether the back is showing.
func (s Snapshot) Revealed() bool {
	return s.State == StateRevealed
}

// Remaining counts the current card and everything after it.
func (s Snapshot) Remaining() int {
	if s.Position == 0 {
		return 0
	}
	return s.Total - s.Position + 1
}

// Renderer receives a snapshot after every visible change. Render is called
// with the session lock held and must not call back into the session.
type Renderer interface {
	Render(Snapshot)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Snapshot)

func (f RendererFunc) Render(s Snapshot) { f(s) }

type nopRenderer struct{}

func (nopRenderer) Render(Snapshot) {}
