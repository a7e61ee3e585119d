package rgb565

import (
	"image"
	"image/color"
	"iter"
)

// BytesPerPixel is the size of one Color on the wire.
const BytesPerPixel = 2

// Color is a 16-bit colour with 5 bits of red, 6 of green and 5 of blue.
type Color uint16

// Common colours.
const (
	Black Color = 0x0000
	White Color = 0xFFFF
	Red   Color = 0xF800
	Green Color = 0x07E0
	Blue  Color = 0x001F
)

// FromRGB packs 8-bit channels into a Color, dropping the low bits.
func FromRGB(r, g, b uint8) Color {
	return Color(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// RGB expands the colour back to 8-bit channels, replicating the high bits
// into the low bits so that White maps to 0xFF on every channel.
func (c Color) RGB() (r, g, b uint8) {
	r5 := uint8(c>>11) & 0x1F
	g6 := uint8(c>>5) & 0x3F
	b5 := uint8(c) & 0x1F
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := c.RGB()
	return uint32(r8) * 0x101, uint32(g8) * 0x101, uint32(b8) * 0x101, 0xFFFF
}

// Bytes returns the wire encoding of c.
func (c Color) Bytes() (hi, lo byte) {
	return byte(c >> 8), byte(c)
}

func toColor(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return Color(uint16(r>>11)<<11 | uint16(g>>10)<<5 | uint16(b>>11))
}

// Model converts colours to Color.
var Model = color.ModelFunc(toColor)

// Image is an RGB565 image whose Pix slice is already in wire order.
type Image struct {
	Pix    []byte          // 2 bytes per pixel, big-endian
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewImage creates an Image with the given bounds, filled with Black.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Image{Rect: r}
	}
	stride := w * BytesPerPixel
	return &Image{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// ColorModel returns Model.
func (p *Image) ColorModel() color.Model {
	return Model
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At implements image.Image.
func (p *Image) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

// RGB565At returns the colour of the pixel at (x, y), or Black outside the
// bounds.
func (p *Image) RGB565At(x, y int) Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Black
	}
	i := p.PixOffset(x, y)
	return Color(uint16(p.Pix[i])<<8 | uint16(p.Pix[i+1]))
}

// Set implements draw.Image.
func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB565(x, y, Model.Convert(c).(Color))
}

// SetRGB565 sets the pixel at (x, y) without colour conversion.
func (p *Image) SetRGB565(x, y int, c Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	p.Pix[i], p.Pix[i+1] = c.Bytes()
}

// Fill sets every pixel to c.
func (p *Image) Fill(c Color) {
	hi, lo := c.Bytes()
	for i := 0; i+1 < len(p.Pix); i += BytesPerPixel {
		p.Pix[i], p.Pix[i+1] = hi, lo
	}
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*BytesPerPixel
}

// Pixels yields every pixel in row-major order.
func (p *Image) Pixels() iter.Seq[Color] {
	return func(yield func(Color) bool) {
		for y := p.Rect.Min.Y; y < p.Rect.Max.Y; y++ {
			for x := p.Rect.Min.X; x < p.Rect.Max.X; x++ {
				if !yield(p.RGB565At(x, y)) {
					return
				}
			}
		}
	}
}
