package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/vytor/betterank/internal/models"
)

// Action is what the learner asked for.
type Action int

const (
	ActionNone Action = iota
	ActionReveal
	ActionRate
	ActionEdit
	ActionDelete
	ActionQuit
	ActionHelp
)

func (a Action) String() string {
	switch a {
	case ActionReveal:
		return "reveal"
	case ActionRate:
		return "rate"
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	case ActionQuit:
		return "quit"
	case ActionHelp:
		return "help"
	default:
		return "none"
	}
}

// ParseAction maps an action name, as used in web form posts, to an Action.
func ParseAction(name string) (Action, bool) {
	for a := ActionReveal; a <= ActionHelp; a++ {
		if a.String() == name {
			return a, true
		}
	}
	return ActionNone, false
}

// Event is one learner input. Feedback is set for ActionRate, Front and Back
// for ActionEdit.
type Event struct {
	Action   Action
	Feedback models.Feedback
	Front    string
	Back     string
}

// ParseKey maps a line of terminal input to an event. Edit events come back
// without text; the caller prompts for it.
func ParseKey(line string) (Event, error) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "s", "space":
		return Event{Action: ActionReveal}, nil
	case "1", "b", "bad":
		return Event{Action: ActionRate, Feedback: models.FeedbackBad}, nil
	case "2", "m", "mid":
		return Event{Action: ActionRate, Feedback: models.FeedbackMid}, nil
	case "3", "g", "good":
		return Event{Action: ActionRate, Feedback: models.FeedbackGood}, nil
	case "e", "edit":
		return Event{Action: ActionEdit}, nil
	case "d", "delete":
		return Event{Action: ActionDelete}, nil
	case "q", "quit", "exit":
		return Event{Action: ActionQuit}, nil
	case "?", "h", "help":
		return Event{Action: ActionHelp}, nil
	}
	return Event{}, fmt.Errorf("unknown key %q, press ? for help", strings.TrimSpace(line))
}

// Target is the walker surface events are dispatched to.
type Target interface {
	Reveal() error
	Rate(ctx context.Context, feedback models.Feedback) error
	EditCurrent(ctx context.Context, front, back string) error
	DeleteCurrent(ctx context.Context) error
}

// Dispatch forwards ev to t. Quit, help and unknown actions are the caller's
// business and do nothing here.
func Dispatch(ctx context.Context, t Target, ev Event) error {
	switch ev.Action {
	case ActionReveal:
		return t.Reveal()
	case ActionRate:
		return t.Rate(ctx, ev.Feedback)
	case ActionEdit:
		return t.EditCurrent(ctx, ev.Front, ev.Back)
	case ActionDelete:
		return t.DeleteCurrent(ctx)
	}
	return nil
}

// Help is the key reference shown by the terminal loop.
const Help = `keys:
  enter, s   reveal the answer
  1, b       rate bad
  2, m       rate mid
  3, g       rate good
  e          edit the current card
  d          delete the current card
  q          quit
  ?          this help`
