package view

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/vytor/betterank/internal/models"
	"github.com/vytor/betterank/internal/review"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
)

var speedColors = map[string]string{
	"green":  ansiGreen,
	"yellow": ansiYellow,
	"red":    ansiRed,
}

// Terminal renders session snapshots as plain text. Timer ticks on the same
// card only rewrite the timer line.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	colors bool

	lastCard  int64
	lastState review.State
	ticking   bool
}

// NewTerminal writes to out, with ANSI colors when colors is set.
func NewTerminal(out io.Writer, colors bool) *Terminal {
	return &Terminal{out: out, colors: colors, lastState: review.StateLoading}
}

// Render implements review.Renderer.
func (t *Terminal) Render(s review.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sameCard := s.CardID == t.lastCard && s.State == t.lastState
	t.lastCard, t.lastState = s.CardID, s.State

	switch s.State {
	case review.StateLoading:
		t.endTick()
		fmt.Fprintln(t.out, "loading cards...")
	case review.StatePresenting:
		if sameCard && s.Elapsed > 0 {
			fmt.Fprintf(t.out, "\r%s", t.timer(s.Elapsed, review.ClassifySpeed(s.Elapsed)))
			t.ticking = true
			return
		}
		t.endTick()
		fmt.Fprintf(t.out, "\n%s\n", t.paint(ansiDim, fmt.Sprintf("card %d of %d", s.Position, s.Total)))
		fmt.Fprintf(t.out, "%s\n", t.paint(ansiBold, s.Front))
		fmt.Fprintf(t.out, "%s", t.timer(s.Elapsed, review.ClassifySpeed(s.Elapsed)))
		t.ticking = true
	case review.StateRevealed:
		t.endTick()
		fmt.Fprintf(t.out, "%s\n", strings.Repeat("-", 20))
		fmt.Fprintf(t.out, "%s\n", s.Back)
		fmt.Fprintf(t.out, "answered in %s (%s)\n", t.timer(s.Elapsed, s.Speed), s.Speed)
		fmt.Fprintln(t.out, ratePrompt(s.Intervals))
	case review.StateFinished:
		t.endTick()
		fmt.Fprintln(t.out, "\nNo more cards to review.")
		if s.PendingFeedback > 0 {
			fmt.Fprintf(t.out, "%d ratings still sending\n", s.PendingFeedback)
		}
		if s.FailedFeedback > 0 {
			fmt.Fprintln(t.out, t.paint(ansiRed, fmt.Sprintf("%d ratings were not saved", s.FailedFeedback)))
		}
	}
}

func (t *Terminal) endTick() {
	if t.ticking {
		fmt.Fprintln(t.out)
		t.ticking = false
	}
}

func (t *Terminal) timer(seconds int, speed review.Speed) string {
	return t.paint(speedColors[speed.Color()], fmt.Sprintf("%02d:%02d", seconds/60, seconds%60))
}

func (t *Terminal) paint(code, text string) string {
	if !t.colors || code == "" {
		return text
	}
	return code + text + ansiReset
}

// Println writes a message line, closing any open timer line first.
func (t *Terminal) Println(a ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endTick()
	fmt.Fprintln(t.out, a...)
}

func ratePrompt(intervals map[models.Feedback]int) string {
	parts := make([]string, 0, len(models.Feedbacks))
	for i, fb := range models.Feedbacks {
		part := fmt.Sprintf("%d %s", i+1, fb)
		if days, ok := intervals[fb]; ok {
			part += fmt.Sprintf(" (%dd)", days)
		}
		parts = append(parts, part)
	}
	return "rate: " + strings.Join(parts, "  ")
}
