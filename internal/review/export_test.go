package review

// QueueIDs exposes the queue order to the external tests.
func (s *Session) QueueIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, len(s.queue))
	for i, c := range s.queue {
		ids[i] = c.ID
	}
	return ids
}
