package review

import "time"

// cardTimer measures time spent on the current card. Every restart bumps the
// generation; ticks carrying an older generation are stale and ignored, so a
// canceled ticker can never drive the display.
type cardTimer struct {
	clock Clock
	start time.Time
	stop  func()
	gen   uint64
}

// restart cancels the running ticker (if any) and starts a new one that calls
// onTick with the new generation once per second.
func (t *cardTimer) restart(onTick func(gen uint64)) uint64 {
	t.halt()
	t.gen++
	gen := t.gen
	t.start = t.clock.Now()
	t.stop = t.clock.Every(time.Second, func() { onTick(gen) })
	return gen
}

// halt stops the ticker and invalidates any tick already in flight.
func (t *cardTimer) halt() {
	if t.stop != nil {
		t.stop()
		t.stop = nil
		t.gen++
	}
}

func (t *cardTimer) current(gen uint64) bool {
	return t.stop != nil && gen == t.gen
}

// elapsed returns whole seconds since the last restart.
func (t *cardTimer) elapsed() int {
	if t.start.IsZero() {
		return 0
	}
	return int(t.clock.Now().Sub(t.start) / time.Second)
}
