package view

// ReaderExited is closed once the loop's input goroutine has returned.
func (l *Loop) ReaderExited() <-chan struct{} {
	return l.readerExited
}
