package term

import (
	"errors"
	"fmt"
)

// Backend puts cells on a physical surface.
type Backend interface {
	// Size returns the surface size in cells.
	Size() (cols, rows int)
	// Draw puts each cell at its position. It must be correct for any
	// subset of the grid, including the whole grid.
	Draw(cells []CellUpdate) error
	// Clear blanks the whole surface.
	Clear() error
	// Flush completes any buffered output.
	Flush() error
}

// Terminal composes frames and sends them to a Backend.
type Terminal struct {
	be         Backend
	cur, prev  *Buffer
	stale      bool // prev no longer reflects the surface
	cols, rows int
}

// New returns a Terminal sized to be. The surface is assumed blank; call
// Clear to make it so.
func New(be Backend) (*Terminal, error) {
	if be == nil {
		return nil, errors.New("term: nil backend")
	}
	cols, rows := be.Size()
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("term: backend has no cells (%dx%d)", cols, rows)
	}
	return &Terminal{
		be:   be,
		cur:  NewBuffer(cols, rows),
		prev: NewBuffer(cols, rows),
		cols: cols,
		rows: rows,
	}, nil
}

// Size returns the grid size in cells.
func (t *Terminal) Size() (cols, rows int) {
	return t.cols, t.rows
}

// Draw composes a frame with fn and sends the changed cells to the backend.
//
// When the backend fails the surface is in an unknown state, so the next
// Draw sends every cell.
func (t *Terminal) Draw(fn func(*Frame)) error {
	t.cur.Reset()
	fn(&Frame{buf: t.cur})

	prev := t.prev
	if t.stale {
		prev = nil
	}
	if err := t.be.Draw(t.cur.Diff(prev)); err != nil {
		t.stale = true
		return fmt.Errorf("term: draw: %w", err)
	}
	if err := t.be.Flush(); err != nil {
		t.stale = true
		return fmt.Errorf("term: flush: %w", err)
	}
	t.stale = false
	t.cur, t.prev = t.prev, t.cur
	return nil
}

// Clear blanks the surface and forgets the previous frame.
func (t *Terminal) Clear() error {
	if err := t.be.Clear(); err != nil {
		t.stale = true
		return fmt.Errorf("term: clear: %w", err)
	}
	t.prev.Reset()
	t.stale = false
	return nil
}

// Invalidate makes the next Draw send every cell.
func (t *Terminal) Invalidate() {
	t.stale = true
}
