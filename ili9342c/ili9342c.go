package ili9342c

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"iter"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"

	"github.com/flavioheleno/tuipanel/bus"
	"github.com/flavioheleno/tuipanel/rgb565"
)

var (
	// ErrOutOfBounds is returned for rectangles not fully inside the panel.
	ErrOutOfBounds = errors.New("ili9342c: rectangle outside display area")
	// ErrShortPixels is returned when a pixel source ends before filling the
	// rectangle. The rectangle is left partially written.
	ErrShortPixels = errors.New("ili9342c: pixel source shorter than rectangle")

	errHalted = errors.New("ili9342c: halted")
	errUninit = errors.New("ili9342c: not initialized")
)

// Opts is the configuration for the ILI9342C panel.
type Opts struct {
	// Native panel dimensions in pixels, before rotation
	W int // Width (default: 320, must be ≤320)
	H int // Height (default: 240, must be ≤240)

	Orientation Orientation
	Invert      bool // Colour inversion, required by some IPS modules
	BGR         bool // Panel has a BGR colour filter

	// Optional backlight enable pin, driven high once the panel is on
	Backlight gpio.PinOut

	// Transfer buffer size in bytes (default: DefaultBufferSize)
	BufferSize int

	// Delay blocks for the given duration (default: time.Sleep)
	Delay func(time.Duration)
}

// Dev is the device handle for the ILI9342C panel.
type Dev struct {
	b  *bus.Bus
	bl gpio.PinOut

	native image.Point // Immutable geometry
	orient Orientation
	bgr    bool

	xfer  transferBuffer
	delay func(time.Duration)

	ready  bool
	halted bool
}

var _ display.Drawer = (*Dev)(nil)

// New initializes the panel attached to b.
//
// b must already be configured. The panel is reset, programmed with the
// power-on sequence, oriented and switched on. An error leaves the panel in an
// unknown state; there is no recovery short of calling New again.
//
// opts can be nil to use defaults (320x240, 0°).
func New(b *bus.Bus, opts *Opts) (*Dev, error) {
	if b == nil {
		return nil, errors.New("ili9342c: nil bus")
	}
	if opts == nil {
		opts = &Opts{}
	}
	o := *opts
	if o.W == 0 {
		o.W = 320
	}
	if o.H == 0 {
		o.H = 240
	}
	if o.BufferSize == 0 {
		o.BufferSize = DefaultBufferSize
	}
	if o.Delay == nil {
		o.Delay = time.Sleep
	}

	if o.W < 0 || o.W > 320 {
		return nil, errors.New("ili9342c: width must be between 1 and 320")
	}
	if o.H < 0 || o.H > 240 {
		return nil, errors.New("ili9342c: height must be between 1 and 240")
	}
	if o.BufferSize < rgb565.BytesPerPixel {
		return nil, errors.New("ili9342c: transfer buffer must hold at least one pixel")
	}
	if !o.Orientation.valid() {
		return nil, fmt.Errorf("ili9342c: invalid orientation %s", o.Orientation)
	}

	d := &Dev{
		b:      b,
		bl:     o.Backlight,
		native: image.Pt(o.W, o.H),
		orient: o.Orientation,
		bgr:    o.BGR,
		xfer:   newTransferBuffer(o.BufferSize),
		delay:  o.Delay,
	}
	if err := d.init(o.Invert); err != nil {
		return nil, fmt.Errorf("ili9342c: init: %w", err)
	}
	return d, nil
}

// init runs the reset pulse and the power-on sequence.
func (d *Dev) init(invert bool) error {
	if err := d.reset(); err != nil {
		return err
	}
	for _, s := range initSequence(d.madctl(d.orient), invert) {
		if err := d.b.Command(s.cmd, s.params...); err != nil {
			return err
		}
		if s.delay > 0 {
			d.delay(s.delay)
		}
	}
	d.ready = true
	return d.SetBacklight(true)
}

// reset pulses the reset line when one is wired, otherwise it issues a
// software reset. Both are followed by the settle time.
func (d *Dev) reset() error {
	if d.b.Wired(bus.RST) {
		d.b.Set(bus.RST, gpio.Low)
		d.delay(resetPulse)
		d.b.Set(bus.RST, gpio.High)
	} else if err := d.b.Command(cmdSWRESET); err != nil {
		return err
	}
	d.delay(resetSettle)
	return nil
}

func (d *Dev) madctl(o Orientation) byte {
	v := o.madctl()
	if d.bgr {
		v |= madctlBGR
	}
	return v
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return rgb565.Model
}

// Bounds returns the logical bounds of the display in the current
// orientation.
func (d *Dev) Bounds() image.Rectangle {
	w, h := d.Size()
	return image.Rect(0, 0, w, h)
}

// Size returns the logical width and height in the current orientation.
func (d *Dev) Size() (w, h int) {
	if d.orient.swapsAxes() {
		return d.native.Y, d.native.X
	}
	return d.native.X, d.native.Y
}

// Orientation returns the current orientation.
func (d *Dev) Orientation() Orientation {
	return d.orient
}

// SetOrientation changes how subsequent address windows map onto the panel.
// Pixels already on the panel are not moved.
func (d *Dev) SetOrientation(o Orientation) error {
	if err := d.usable(); err != nil {
		return err
	}
	if !o.valid() {
		return fmt.Errorf("ili9342c: invalid orientation %s", o)
	}
	if err := d.b.Command(cmdMADCTL, d.madctl(o)); err != nil {
		return err
	}
	d.orient = o
	return nil
}

// WriteRect fills the w×h rectangle at (x, y) with the first w*h colours of
// pix, in row-major order.
//
// A zero-area rectangle is a no-op. On a bus error the rectangle content is
// undefined; nothing is retried.
func (d *Dev) WriteRect(x, y, w, h int, pix iter.Seq[rgb565.Color]) error {
	if err := d.usable(); err != nil {
		return err
	}
	if w == 0 || h == 0 {
		return nil
	}
	bw, bh := d.Size()
	if x < 0 || y < 0 || w < 0 || h < 0 || w > bw-x || h > bh-y {
		return ErrOutOfBounds
	}
	if err := d.setWindow(x, y, w, h); err != nil {
		return err
	}
	n, err := d.xfer.stream(pix, w*h, d.b.Data)
	if err != nil {
		return err
	}
	if n < w*h {
		return ErrShortPixels
	}
	return nil
}

// FillRect fills the w×h rectangle at (x, y) with c.
func (d *Dev) FillRect(x, y, w, h int, c rgb565.Color) error {
	return d.WriteRect(x, y, w, h, repeat(c))
}

// Write writes a full frame of raw RGB565 pixels, two bytes per pixel, most
// significant byte first. The data must be exactly width*height*2 bytes for
// the current orientation.
func (d *Dev) Write(pixels []byte) (int, error) {
	if err := d.usable(); err != nil {
		return 0, err
	}
	r := d.Bounds()
	if len(pixels) != r.Dx()*r.Dy()*rgb565.BytesPerPixel {
		return 0, errors.New("ili9342c: invalid buffer size")
	}
	img := &rgb565.Image{Pix: pixels, Stride: r.Dx() * rgb565.BytesPerPixel, Rect: r}
	if err := d.WriteRect(0, 0, r.Dx(), r.Dy(), img.Pixels()); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Draw implements display.Drawer. The dst rectangle is clipped to the
// display; src is sampled starting at sp.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if err := d.usable(); err != nil {
		return err
	}
	clipped := dst.Intersect(d.Bounds())
	if clipped.Empty() {
		return nil
	}
	sp = sp.Add(clipped.Min.Sub(dst.Min))
	dst = clipped
	return d.WriteRect(dst.Min.X, dst.Min.Y, dst.Dx(), dst.Dy(), sample(dst, src, sp))
}

// sample yields the colours of src covering dst, row by row.
func sample(dst image.Rectangle, src image.Image, sp image.Point) iter.Seq[rgb565.Color] {
	at := func(x, y int) rgb565.Color {
		return rgb565.Model.Convert(src.At(x, y)).(rgb565.Color)
	}
	if img, ok := src.(*rgb565.Image); ok {
		at = img.RGB565At
	}
	return func(yield func(rgb565.Color) bool) {
		for y := 0; y < dst.Dy(); y++ {
			for x := 0; x < dst.Dx(); x++ {
				if !yield(at(sp.X+x, sp.Y+y)) {
					return
				}
			}
		}
	}
}

// SetInvert turns colour inversion on or off.
func (d *Dev) SetInvert(invert bool) error {
	if err := d.usable(); err != nil {
		return err
	}
	cmd := byte(cmdINVOFF)
	if invert {
		cmd = cmdINVON
	}
	return d.b.Command(cmd)
}

// SetBacklight drives the backlight pin, if any.
func (d *Dev) SetBacklight(on bool) error {
	if d.bl == nil {
		return nil
	}
	if err := d.bl.Out(gpio.Level(on)); err != nil {
		return fmt.Errorf("ili9342c: backlight: %w", err)
	}
	return nil
}

// Halt switches the display and backlight off.
// After calling Halt, the display will not respond to further commands
// until the device is re-initialized.
func (d *Dev) Halt() error {
	d.halted = true
	if err := d.SetBacklight(false); err != nil {
		return err
	}
	return d.b.Command(cmdDISPOFF)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ili9342c.Dev{%dx%d %s}", d.native.X, d.native.Y, d.orient)
}

// usable reports whether the panel accepts commands.
func (d *Dev) usable() error {
	if d.halted {
		return errHalted
	}
	if !d.ready {
		return errUninit
	}
	return nil
}

// setWindow bounds the following memory write to the given rectangle and
// starts it.
func (d *Dev) setWindow(x, y, w, h int) error {
	x1, y1 := x+w-1, y+h-1
	if err := d.b.Command(cmdCASET, byte(x>>8), byte(x), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	if err := d.b.Command(cmdRASET, byte(y>>8), byte(y), byte(y1>>8), byte(y1)); err != nil {
		return err
	}
	return d.b.Command(cmdRAMWR)
}
