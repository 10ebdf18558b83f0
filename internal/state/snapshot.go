package state

import (
	"encoding/json"
	"fmt"
	"log"
	"slices"
)

// Snapshot is the vector form of a page, suitable for JSON persistence.
type Snapshot struct {
	PageID  string   `json:"page_id"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	NextID  ID       `json:"next_id"`
	Strokes []Stroke `json:"strokes"`
}

// Snapshot copies the current strokes. PageID and size are left to the
// caller.
func (st *Store) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	snap := Snapshot{NextID: st.clock.Peek(), Strokes: make([]Stroke, 0, len(st.strokes))}
	for _, s := range st.strokes {
		c := *s
		c.Outline = slices.Clone(s.Outline)
		snap.Strokes = append(snap.Strokes, c)
	}
	return snap
}

// Restore replaces the store contents with the strokes of snap, keeping
// their IDs. The clock moves past every restored ID and past snap.NextID,
// never backwards.
func (st *Store) Restore(snap Snapshot) error {
	seen := make(map[ID]struct{}, len(snap.Strokes))
	strokes := make([]*Stroke, 0, len(snap.Strokes))
	next := snap.NextID
	for i := range snap.Strokes {
		s := snap.Strokes[i]
		if s.ID == 0 {
			return fmt.Errorf("stroke %d: missing id", i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("stroke %d: duplicate id %d", i, s.ID)
		}
		if len(s.Outline) < 3 {
			log.Printf("[STORE] Skipping stroke %d with %d vertices", s.ID, len(s.Outline))
			continue
		}
		seen[s.ID] = struct{}{}
		s.Outline = slices.Clone(s.Outline)
		strokes = append(strokes, &s)
		if s.ID >= next {
			next = s.ID + 1
		}
	}

	st.mu.Lock()
	st.strokes = strokes
	clear(st.bounds)
	st.clock.Advance(next)
	st.mu.Unlock()

	ids := make([]ID, len(strokes))
	for i, s := range strokes {
		ids[i] = s.ID
	}
	log.Printf("[STORE] Restored %d strokes, next id %d", len(strokes), st.NextID())
	st.notify(Mutation{Op: OpLoad, IDs: ids})
	return nil
}

// MarshalSnapshot encodes snap as indented JSON.
func MarshalSnapshot(snap Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

// UnmarshalSnapshot decodes a snapshot produced by MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
