package state

import "sync/atomic"

// Clock hands out stroke IDs. It only moves forward, so an ID released by
// undo or erase is never issued again.
type Clock struct {
	last atomic.Uint64
}

// Tick returns the next ID.
func (c *Clock) Tick() ID {
	return ID(c.last.Add(1))
}

// Peek returns the ID the next Tick will return.
func (c *Clock) Peek() ID {
	return ID(c.last.Load() + 1)
}

// Advance makes sure the next Tick returns at least next.
func (c *Clock) Advance(next ID) {
	for {
		cur := c.last.Load()
		if uint64(next) <= cur+1 {
			return
		}
		if c.last.CompareAndSwap(cur, uint64(next)-1) {
			return
		}
	}
}
