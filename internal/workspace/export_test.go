package workspace

// Generation returns the generation of the currently armed inactivity timer.
func (m *SessionManager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// ExpireGeneration fires the inactivity timer armed at gen.
func (m *SessionManager) ExpireGeneration(gen uint64) { m.expire(gen) }
