package view

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/vytor/betterank/internal/errors"
	"github.com/vytor/betterank/internal/logger"
	"github.com/vytor/betterank/internal/review"
)

// Session is what the terminal loop drives.
type Session interface {
	Target
	Snapshot() review.Snapshot
	Failures() []review.FeedbackFailure
}

// Loop reads learner input line by line and feeds it to a session.
type Loop struct {
	session Session
	term    *Terminal
	lines   <-chan string
	readErr <-chan error

	done     chan struct{}
	stopOnce sync.Once
	// readerExited is closed when the input goroutine returns.
	readerExited chan struct{}
}

// NewLoop reads from in. Output goes through term so prompts and timer lines
// do not interleave.
func NewLoop(in io.Reader, term *Terminal, s Session) *Loop {
	lines := make(chan string)
	readErr := make(chan error, 1)
	l := &Loop{
		session:      s,
		term:         term,
		lines:        lines,
		readErr:      readErr,
		done:         make(chan struct{}),
		readerExited: make(chan struct{}),
	}
	go func() {
		defer close(l.readerExited)
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-l.done:
				return
			}
		}
		readErr <- sc.Err()
	}()
	return l
}

// Run returns when the session finishes, the learner quits, input ends or
// ctx is cancelled. Input read after Run returns is discarded.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stopOnce.Do(func() { close(l.done) })
	log := logger.FromContext(ctx).WithPrefix("view")

	for {
		l.ReportFailures()
		if l.session.Snapshot().State == review.StateFinished {
			return nil
		}

		line, ok, err := l.readLine(ctx)
		if err != nil || !ok {
			return err
		}
		ev, err := ParseKey(line)
		if err != nil {
			l.term.Println(err)
			continue
		}

		switch ev.Action {
		case ActionQuit:
			return nil
		case ActionHelp:
			l.term.Println(Help)
			continue
		case ActionEdit:
			ev, ok, err = l.promptEdit(ctx)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		case ActionDelete:
			confirmed, err := l.confirm(ctx, "delete this card? [y/N] ")
			if err != nil {
				return err
			}
			if !confirmed {
				continue
			}
		}

		if err := Dispatch(ctx, l.session, ev); err != nil {
			log.Debug("%s failed: %v", ev.Action, err)
			l.term.Println(describe(ev.Action, err))
		}
	}
}

func (l *Loop) readLine(ctx context.Context) (string, bool, error) {
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case line, ok := <-l.lines:
		if !ok {
			return "", false, <-l.readErr
		}
		return line, true, nil
	}
}

func (l *Loop) promptEdit(ctx context.Context) (Event, bool, error) {
	snap := l.session.Snapshot()
	if !snap.HasCard() {
		l.term.Println(describe(ActionEdit, errors.ErrNoCurrentCard))
		return Event{}, false, nil
	}
	l.term.Println(fmt.Sprintf("front [%s]:", snap.Front))
	front, ok, err := l.readLine(ctx)
	if err != nil || !ok {
		return Event{}, false, err
	}
	l.term.Println("back (empty keeps it):")
	back, ok, err := l.readLine(ctx)
	if err != nil || !ok {
		return Event{}, false, err
	}
	front, back = strings.TrimSpace(front), strings.TrimSpace(back)
	if front == "" && back == "" {
		l.term.Println("nothing changed")
		return Event{}, false, nil
	}
	return Event{Action: ActionEdit, Front: front, Back: back}, true, nil
}

func (l *Loop) confirm(ctx context.Context, question string) (bool, error) {
	l.term.Println(question)
	answer, ok, err := l.readLine(ctx)
	if err != nil || !ok {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// ReportFailures prints and forgets the ratings the backend rejected. Call it
// once more after closing the session to catch late failures.
func (l *Loop) ReportFailures() {
	for _, f := range l.session.Failures() {
		l.term.Println(fmt.Sprintf("rating %s for card %d was not saved: %v", f.Feedback, f.FlashcardID, f.Err))
	}
}

// describe turns a dispatch error into something a learner can act on.
func describe(a Action, err error) string {
	switch {
	case errors.Is(err, errors.ErrNotRevealed):
		return "reveal the answer first (enter)"
	case errors.Is(err, errors.ErrNoCurrentCard):
		return "there is no card to " + a.String()
	case errors.Is(err, errors.ErrCardChanged):
		return "the card changed before the " + a.String() + " finished, try again"
	}
	var verr *errors.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if fe, ok := errors.AsFetchError(err); ok && fe.Status != 0 {
		return fmt.Sprintf("%s failed: %s (status %d)", a, fe.Message, fe.Status)
	}
	return fmt.Sprintf("%s failed: %v", a, err)
}
