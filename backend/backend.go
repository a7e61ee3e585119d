// Package backend draws terminal cells on a pixel panel.
//
// The panel has no text mode, so every cell is rasterized at draw time: the
// glyph mask from a Font is expanded into foreground and background pixels in
// a cell-sized block, and the block is written to the panel as one
// rectangle.
package backend

import (
	"errors"
	"fmt"
	"image"
	"iter"

	"github.com/gdamore/tcell/v2"

	"github.com/flavioheleno/tuipanel/rgb565"
	"github.com/flavioheleno/tuipanel/term"
)

// Panel is a pixel-addressable display. *ili9342c.Dev implements it.
type Panel interface {
	Size() (w, h int)
	WriteRect(x, y, w, h int, pix iter.Seq[rgb565.Color]) error
	FillRect(x, y, w, h int, c rgb565.Color) error
}

// Options is the configuration for a Backend.
type Options struct {
	Font Font // Default: DefaultFont()

	// Colours used for tcell.ColorDefault. When both are zero, white on
	// black is used.
	Foreground rgb565.Color
	Background rgb565.Color
}

// Backend implements term.Backend on top of a Panel.
type Backend struct {
	p          Panel
	font       Font
	cell       image.Point
	cols, rows int
	fg, bg     rgb565.Color

	block *rgb565.Image // Reused for every cell
}

var _ term.Backend = (*Backend)(nil)

// New returns a Backend whose grid is the panel size divided by the font cell
// size. Pixels past the last whole cell are never drawn by Draw.
func New(p Panel, opts *Options) (*Backend, error) {
	if p == nil {
		return nil, errors.New("backend: nil panel")
	}
	o := Options{}
	if opts != nil {
		o = *opts
	}
	if o.Font == nil {
		o.Font = DefaultFont()
	}
	if o.Foreground == 0 && o.Background == 0 {
		o.Foreground, o.Background = rgb565.White, rgb565.Black
	}

	cell := o.Font.CellSize()
	if cell.X <= 0 || cell.Y <= 0 {
		return nil, fmt.Errorf("backend: invalid cell size %v", cell)
	}
	w, h := p.Size()
	cols, rows := w/cell.X, h/cell.Y
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("backend: %dx%d cell does not fit a %dx%d panel", cell.X, cell.Y, w, h)
	}
	return &Backend{
		p:     p,
		font:  o.Font,
		cell:  cell,
		cols:  cols,
		rows:  rows,
		fg:    o.Foreground,
		bg:    o.Background,
		block: rgb565.NewImage(image.Rectangle{Max: cell}),
	}, nil
}

// Size implements term.Backend.
func (b *Backend) Size() (cols, rows int) {
	return b.cols, b.rows
}

// CellRect returns the pixel rectangle of the cell at column x, row y.
func (b *Backend) CellRect(x, y int) image.Rectangle {
	p := image.Pt(x*b.cell.X, y*b.cell.Y)
	return image.Rectangle{Min: p, Max: p.Add(b.cell)}
}

// Draw implements term.Backend. Each cell is written as its own rectangle;
// cells outside the grid are skipped. The first panel error is returned and
// the remaining cells are not drawn.
func (b *Backend) Draw(cells []term.CellUpdate) error {
	for _, u := range cells {
		if u.X < 0 || u.Y < 0 || u.X >= b.cols || u.Y >= b.rows {
			continue
		}
		b.rasterize(u.Cell)
		r := b.CellRect(u.X, u.Y)
		if err := b.p.WriteRect(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), b.block.Pixels()); err != nil {
			return fmt.Errorf("backend: cell %d,%d: %w", u.X, u.Y, err)
		}
	}
	return nil
}

// Clear implements term.Backend by filling the whole panel with the
// background colour.
func (b *Backend) Clear() error {
	w, h := b.p.Size()
	if err := b.p.FillRect(0, 0, w, h, b.bg); err != nil {
		return fmt.Errorf("backend: clear: %w", err)
	}
	return nil
}

// Flush implements term.Backend. Writes are synchronous, so there is nothing
// to do.
func (b *Backend) Flush() error {
	return nil
}

// rasterize renders c into b.block.
func (b *Backend) rasterize(c term.Cell) {
	fg, bg, attrs := b.colors(c.Style)
	var mask *image.Alpha
	if !c.Continuation() && c.Rune != ' ' {
		mask = b.font.Glyph(c.Rune)
	}
	underline := attrs&tcell.AttrUnderline != 0
	for y := 0; y < b.cell.Y; y++ {
		for x := 0; x < b.cell.X; x++ {
			px := bg
			if mask != nil && mask.AlphaAt(x, y).A >= 0x80 {
				px = fg
			}
			if underline && y == b.cell.Y-1 {
				px = fg
			}
			b.block.SetRGB565(x, y, px)
		}
	}
}

// colors resolves the pixel colours of a style.
func (b *Backend) colors(s tcell.Style) (fg, bg rgb565.Color, attrs tcell.AttrMask) {
	fc, bc, attrs := s.Decompose()
	fg, bg = convert(fc, b.fg), convert(bc, b.bg)
	if attrs&tcell.AttrReverse != 0 {
		fg, bg = bg, fg
	}
	return fg, bg, attrs
}

func convert(c tcell.Color, def rgb565.Color) rgb565.Color {
	if c == tcell.ColorDefault || c == tcell.ColorReset {
		return def
	}
	r, g, b := c.RGB()
	if r < 0 || g < 0 || b < 0 {
		return def
	}
	return rgb565.FromRGB(uint8(r), uint8(g), uint8(b))
}
