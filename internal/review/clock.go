package review

import (
	"sync"
	"time"
)

// Clock abstracts time for the per-card timer.
type Clock interface {
	Now() time.Time
	// Every calls fn every d until the returned stop func is called. Stop
	// must not wait for an fn call that is already running.
	Every(d time.Duration, fn func()) (stop func())
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
