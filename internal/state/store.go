package state

import (
	"errors"
	"log"
	"slices"
	"sync"
	"time"

	"InkBoard/internal/geom"
)

// ErrUnknownStroke is returned when an ID does not name a stroke in the store.
var ErrUnknownStroke = errors.New("unknown stroke")

// Store is the ordered stroke list of one page. Order is z-order and undo
// order. Bounding boxes are computed on first use and dropped when their
// stroke leaves the store.
type Store struct {
	clock   Clock
	strokes []*Stroke
	bounds  map[ID]geom.Rect
	mu      sync.RWMutex

	// OnMutate, when set, is called after every change, outside the lock.
	OnMutate func(Mutation)
}

// NewStore returns an empty store whose first ID is 1.
func NewStore() *Store {
	return &Store{bounds: make(map[ID]geom.Rect)}
}

// Append assigns s the next ID, adds it on top and returns the ID.
func (st *Store) Append(s Stroke) ID {
	st.mu.Lock()
	s.ID = st.clock.Tick()
	if s.Created.IsZero() {
		s.Created = time.Now()
	}
	s.Outline = slices.Clone(s.Outline)
	st.strokes = append(st.strokes, &s)
	st.mu.Unlock()

	log.Printf("[STORE] Stroke appended: %d (%d vertices)", s.ID, len(s.Outline))
	st.notify(Mutation{Op: OpAppend, IDs: []ID{s.ID}})
	return s.ID
}

// RemoveMany removes every stroke whose ID is in ids in a single pass,
// keeping survivors in order, and reports how many were removed.
func (st *Store) RemoveMany(ids map[ID]struct{}) int {
	if len(ids) == 0 {
		return 0
	}
	st.mu.Lock()
	var removed []ID
	kept := st.strokes[:0]
	for _, s := range st.strokes {
		if _, ok := ids[s.ID]; ok {
			removed = append(removed, s.ID)
			delete(st.bounds, s.ID)
			continue
		}
		kept = append(kept, s)
	}
	clear(st.strokes[len(kept):])
	st.strokes = kept
	st.mu.Unlock()

	if len(removed) == 0 {
		return 0
	}
	log.Printf("[STORE] Removed %d strokes", len(removed))
	st.notify(Mutation{Op: OpRemove, IDs: removed})
	return len(removed)
}

// UndoLast removes the stroke currently on top of the store, whatever
// its ID. It returns false when the store is empty.
func (st *Store) UndoLast() (*Stroke, bool) {
	st.mu.Lock()
	n := len(st.strokes)
	if n == 0 {
		st.mu.Unlock()
		return nil, false
	}
	last := st.strokes[n-1]
	st.strokes[n-1] = nil
	st.strokes = st.strokes[:n-1]
	delete(st.bounds, last.ID)
	st.mu.Unlock()

	log.Printf("[STORE] Undo removed stroke %d", last.ID)
	st.notify(Mutation{Op: OpUndo, IDs: []ID{last.ID}})
	return last, true
}

// Clear empties the store. The clock keeps running.
func (st *Store) Clear() {
	st.mu.Lock()
	ids := make([]ID, len(st.strokes))
	for i, s := range st.strokes {
		ids[i] = s.ID
	}
	st.strokes = nil
	clear(st.bounds)
	st.mu.Unlock()

	st.notify(Mutation{Op: OpClear, IDs: ids})
}

// Strokes returns the current strokes in z-order. The slice is a copy;
// the strokes themselves are shared and must not be modified.
func (st *Store) Strokes() []*Stroke {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return slices.Clone(st.strokes)
}

// IDs returns the IDs of the current strokes in z-order.
func (st *Store) IDs() []ID {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ids := make([]ID, len(st.strokes))
	for i, s := range st.strokes {
		ids[i] = s.ID
	}
	return ids
}

// Len returns the number of strokes.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.strokes)
}

// Get returns the stroke with the given ID.
func (st *Store) Get(id ID) (*Stroke, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if s := st.find(id); s != nil {
		return s, nil
	}
	return nil, ErrUnknownStroke
}

// Bounds returns the bounding box of the stroke outline, computing and
// caching it on first use.
func (st *Store) Bounds(id ID) (geom.Rect, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if r, ok := st.bounds[id]; ok {
		return r, nil
	}
	s := st.find(id)
	if s == nil {
		return geom.Rect{}, ErrUnknownStroke
	}
	r := geom.Bounds(s.Outline)
	st.bounds[id] = r
	return r, nil
}

// cachedBounds reports whether a bounding box is cached for id.
func (st *Store) cachedBounds(id ID) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	_, ok := st.bounds[id]
	return ok
}

// NextID returns the ID the next Append will assign.
func (st *Store) NextID() ID { return st.clock.Peek() }

func (st *Store) find(id ID) *Stroke {
	for _, s := range st.strokes {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (st *Store) notify(m Mutation) {
	if st.OnMutate != nil {
		st.OnMutate(m)
	}
}
