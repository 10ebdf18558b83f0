package eraser

import "InkBoard/internal/state"

// Session is the set of strokes one eraser drag has touched so far.
type Session struct {
	pending map[state.ID]struct{}
	order   []state.ID
}

// NewSession starts an empty session.
func NewSession() *Session {
	return &Session{pending: make(map[state.ID]struct{})}
}

// Mark adds id to the pending set. It reports whether id was new.
func (s *Session) Mark(id state.ID) bool {
	if _, ok := s.pending[id]; ok {
		return false
	}
	s.pending[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Has reports whether id is pending removal. A nil session has nothing
// pending.
func (s *Session) Has(id state.ID) bool {
	if s == nil {
		return false
	}
	_, ok := s.pending[id]
	return ok
}

// IDs returns the pending IDs in the order they were marked.
func (s *Session) IDs() []state.ID {
	return append([]state.ID(nil), s.order...)
}

// Len returns the number of pending strokes.
func (s *Session) Len() int { return len(s.order) }

// Commit removes the pending strokes from st in one pass and empties the
// session. It returns the number of strokes removed.
func (s *Session) Commit(st *state.Store) int {
	if len(s.pending) == 0 {
		return 0
	}
	n := st.RemoveMany(s.pending)
	s.Discard()
	return n
}

// Discard forgets the pending strokes without removing anything.
func (s *Session) Discard() {
	s.pending = make(map[state.ID]struct{})
	s.order = nil
}
