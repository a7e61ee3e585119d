package backend

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Font rasterizes runes into fixed-size cells.
type Font interface {
	// CellSize returns the pixel size of one character cell.
	CellSize() image.Point
	// Glyph returns the coverage of r over a cell-sized rectangle at the
	// origin. The result must not be modified.
	Glyph(r rune) *image.Alpha
}

// fallback is drawn for runes the face has no glyph for.
const fallback = '?'

// FaceFont renders a monospace font.Face into character cells.
type FaceFont struct {
	face   font.Face
	cell   image.Point
	ascent int
	cache  map[rune]*image.Alpha
}

// NewFaceFont returns a Font sized from the face metrics: the advance of 'M'
// by the line height.
func NewFaceFont(face font.Face) *FaceFont {
	m := face.Metrics()
	adv, ok := face.GlyphAdvance('M')
	if !ok {
		adv = m.Height
	}
	return &FaceFont{
		face:   face,
		cell:   image.Pt(adv.Ceil(), m.Height.Ceil()),
		ascent: m.Ascent.Ceil(),
		cache:  make(map[rune]*image.Alpha),
	}
}

// DefaultFont returns the 7×13 fixed font.
func DefaultFont() *FaceFont {
	return NewFaceFont(basicfont.Face7x13)
}

// CellSize implements Font.
func (f *FaceFont) CellSize() image.Point {
	return f.cell
}

// Glyph implements Font. Masks are cached per rune.
func (f *FaceFont) Glyph(r rune) *image.Alpha {
	if m, ok := f.cache[r]; ok {
		return m
	}
	dr, src, sp, _, ok := f.face.Glyph(fixed.P(0, f.ascent), r)
	if !ok {
		if r == fallback {
			return image.NewAlpha(image.Rectangle{Max: f.cell})
		}
		m := f.Glyph(fallback)
		f.cache[r] = m
		return m
	}
	m := image.NewAlpha(image.Rectangle{Max: f.cell})
	draw.Draw(m, dr, src, sp, draw.Src)
	f.cache[r] = m
	return m
}
