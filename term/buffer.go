// Package term is a small immediate-mode terminal UI layer.
//
// A Terminal owns a grid of character cells. Each frame the caller composes
// the whole grid from scratch inside a draw callback; the Terminal then hands
// the cells that changed since the previous frame to a Backend, which puts
// them on screen. Cells carry tcell styles, so colours and attributes are
// expressed the same way as in terminal applications.
package term

import (
	"image"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Cell is one character position.
//
// A rune occupying two columns is stored in its first cell; the second cell
// holds a zero Rune with the same style.
type Cell struct {
	Rune  rune
	Style tcell.Style
}

// Blank is the content of a cleared cell.
var Blank = Cell{Rune: ' ', Style: tcell.StyleDefault}

// Continuation reports whether c is the trailing half of a wide rune.
func (c Cell) Continuation() bool {
	return c.Rune == 0
}

// CellUpdate is a cell to be drawn at column X, row Y.
type CellUpdate struct {
	X, Y int
	Cell Cell
}

// Buffer is a cols×rows grid of cells stored row by row.
type Buffer struct {
	cols, rows int
	cells      []Cell
}

// NewBuffer returns a blank buffer.
func NewBuffer(cols, rows int) *Buffer {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	b := &Buffer{cols: cols, rows: rows, cells: make([]Cell, cols*rows)}
	b.Reset()
	return b
}

// Size returns the buffer dimensions in cells.
func (b *Buffer) Size() (cols, rows int) {
	return b.cols, b.rows
}

// Area returns the rectangle covered by the buffer.
func (b *Buffer) Area() image.Rectangle {
	return image.Rect(0, 0, b.cols, b.rows)
}

// Reset blanks every cell.
func (b *Buffer) Reset() {
	for i := range b.cells {
		b.cells[i] = Blank
	}
}

// Cell returns the cell at (x, y), or Blank outside the buffer.
func (b *Buffer) Cell(x, y int) Cell {
	if !b.in(x, y) {
		return Blank
	}
	return b.cells[y*b.cols+x]
}

// SetContent puts r at (x, y). Zero-width runes are ignored; a wide rune that
// does not fit before the right edge is not drawn.
func (b *Buffer) SetContent(x, y int, r rune, style tcell.Style) {
	b.put(x, y, b.cols, r, style)
}

// SetString writes s starting at (x, y), clipped at the right edge, and
// returns the number of columns used.
func (b *Buffer) SetString(x, y int, s string, style tcell.Style) int {
	return b.putString(x, y, b.cols, s, style)
}

// SetStyle applies style to every cell in area, keeping the runes.
func (b *Buffer) SetStyle(area image.Rectangle, style tcell.Style) {
	area = area.Intersect(b.Area())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			b.cells[y*b.cols+x].Style = style
		}
	}
}

// Fill sets every cell in area to c.
func (b *Buffer) Fill(area image.Rectangle, c Cell) {
	area = area.Intersect(b.Area())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			b.cells[y*b.cols+x] = c
		}
	}
}

// Diff returns the cells of b that differ from prev, in row-major order. A
// nil prev or one of a different size yields every cell.
func (b *Buffer) Diff(prev *Buffer) []CellUpdate {
	full := prev == nil || prev.cols != b.cols || prev.rows != b.rows
	var out []CellUpdate
	for i, c := range b.cells {
		if full || prev.cells[i] != c {
			out = append(out, CellUpdate{X: i % b.cols, Y: i / b.cols, Cell: c})
		}
	}
	return out
}

func (b *Buffer) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.cols && y < b.rows
}

// put writes r at (x, y) if it fits before maxX and returns its width.
func (b *Buffer) put(x, y, maxX int, r rune, style tcell.Style) int {
	w := runewidth.RuneWidth(r)
	if w == 0 || !b.in(x, y) || x+w > maxX || x+w > b.cols {
		return 0
	}
	i := y*b.cols + x
	// Overwriting half of a wide rune blanks the other half.
	if b.cells[i].Continuation() && x > 0 {
		b.cells[i-1] = Blank
	}
	if x+w < b.cols && b.cells[i+w].Continuation() {
		b.cells[i+w] = Blank
	}
	b.cells[i] = Cell{Rune: r, Style: style}
	if w == 2 {
		b.cells[i+1] = Cell{Style: style}
	}
	return w
}

func (b *Buffer) putString(x, y, maxX int, s string, style tcell.Style) int {
	start := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > maxX || x+w > b.cols {
			break
		}
		x += b.put(x, y, maxX, r, style)
	}
	return x - start
}
