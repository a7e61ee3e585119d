package term

import (
	"image"

	"github.com/gdamore/tcell/v2"
)

// Widget renders itself into an area of a Buffer.
type Widget interface {
	Render(area image.Rectangle, buf *Buffer)
}

// Frame is the composition surface handed to the draw callback. It is only
// valid for the duration of the callback.
type Frame struct {
	buf *Buffer
}

// Area returns the full drawable area in cells.
func (f *Frame) Area() image.Rectangle {
	return f.buf.Area()
}

// Size returns the drawable size in cells.
func (f *Frame) Size() (cols, rows int) {
	return f.buf.Size()
}

// Buffer returns the buffer being composed.
func (f *Frame) Buffer() *Buffer {
	return f.buf
}

// SetContent puts a single rune at (x, y).
func (f *Frame) SetContent(x, y int, r rune, style tcell.Style) {
	f.buf.SetContent(x, y, r, style)
}

// Render draws w clipped to area.
func (f *Frame) Render(w Widget, area image.Rectangle) {
	area = area.Intersect(f.Area())
	if area.Empty() {
		return
	}
	w.Render(area, f.buf)
}
