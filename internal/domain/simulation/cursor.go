package simulation

import "github.com/google/uuid"

// Cursor walks one day's appointments in scheduled order, settling them
// one at a time. It is rebuilt whenever the clock enters a new day and
// survives repeated initialization within the same day.
type Cursor struct {
	dayIndex        int
	order           []uuid.UUID
	nextIdx         int
	lastProcessedID *uuid.UUID
}

func NewCursor() *Cursor {
	return &Cursor{dayIndex: -1}
}

// holds reports whether the cursor is already built for the given day.
// An empty order never holds, so a day that gains appointments after an
// early init picks them up on the next one.
func (c *Cursor) holds(day int) bool {
	return c.dayIndex == day && len(c.order) > 0
}

func (c *Cursor) reset(day int, order []uuid.UUID) {
	c.dayIndex = day
	c.order = order
	c.nextIdx = 0
	c.lastProcessedID = nil
}

func (c *Cursor) total() int { return len(c.order) }

func (c *Cursor) remaining() int {
	r := len(c.order) - c.nextIdx
	if r < 0 {
		return 0
	}
	return r
}

// next returns the id under the cursor, or false when the day is
// exhausted.
func (c *Cursor) next() (uuid.UUID, bool) {
	if c.nextIdx < 0 || c.nextIdx >= len(c.order) {
		return uuid.Nil, false
	}
	return c.order[c.nextIdx], true
}

// step advances past the given id and remembers it as last processed.
func (c *Cursor) step(id uuid.UUID) {
	c.nextIdx++
	c.lastProcessedID = &id
}

func (c *Cursor) exhausted() bool { return c.nextIdx >= len(c.order) }
