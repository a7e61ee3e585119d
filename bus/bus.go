// Package bus owns the SPI link to a display controller together with its
// chip-select, data/command and reset control lines.
//
// Display controllers tell command bytes from parameter and pixel bytes purely
// by the level of the data/command line while the bytes are clocked in. Bus
// therefore only exposes Command and Data to drivers: each sets the line to
// the level matching the transfer before issuing it.
package bus

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

var (
	// ErrNotConfigured is returned by Write before Configure succeeded.
	ErrNotConfigured = errors.New("bus: not configured")
	// ErrFrequency is returned by Configure for a frequency the hardware
	// cannot run at.
	ErrFrequency = errors.New("bus: frequency out of range")
)

// Line identifies one of the control signals owned by the Bus.
type Line uint8

const (
	CS  Line = iota // Chip select, active low
	DC              // Data/command select, low for commands
	RST             // Reset, active low
)

func (l Line) String() string {
	switch l {
	case CS:
		return "CS"
	case DC:
		return "DC"
	case RST:
		return "RST"
	}
	return fmt.Sprintf("Line(%d)", uint8(l))
}

// Pins are the control lines wired to the panel.
type Pins struct {
	CS  gpio.PinOut // Optional, nil when the SPI port drives chip select
	DC  gpio.PinOut // Required
	RST gpio.PinOut // Optional, nil when the reset line is not wired
}

// Bus is the exclusive owner of an SPI port and its control lines.
//
// It is not safe for concurrent use; there is exactly one owner for the
// lifetime of the device.
type Bus struct {
	port  spi.Port
	c     spi.Conn
	pins  [3]gpio.PinOut
	level [3]gpio.Level
	limit physic.Frequency

	pinErr error // first control line failure, reported by the next Write
}

// New takes ownership of port and pins. limit is the maximum clock the
// hardware supports.
func New(port spi.Port, pins Pins, limit physic.Frequency) (*Bus, error) {
	if port == nil {
		return nil, errors.New("bus: nil SPI port")
	}
	if pins.DC == nil {
		return nil, errors.New("bus: DC pin is required")
	}
	return &Bus{
		port:  port,
		pins:  [3]gpio.PinOut{CS: pins.CS, DC: pins.DC, RST: pins.RST},
		level: [3]gpio.Level{CS: gpio.High, DC: gpio.High, RST: gpio.High},
		limit: limit,
	}, nil
}

// Configure connects the port at frequency f in the given clock mode with
// 8-bit words.
func (b *Bus) Configure(f physic.Frequency, mode spi.Mode) error {
	if f <= 0 || (b.limit > 0 && f > b.limit) {
		return fmt.Errorf("%w: %s (limit %s)", ErrFrequency, f, b.limit)
	}
	c, err := b.port.Connect(f, mode, 8)
	if err != nil {
		return fmt.Errorf("bus: connect: %w", err)
	}
	b.c = c
	b.Set(CS, gpio.High)
	return nil
}

// Set drives a control line. It never fails: an error from the pin is held
// and returned by the next Write. Setting an unwired line only records the
// level.
func (b *Bus) Set(line Line, level gpio.Level) {
	if int(line) >= len(b.pins) {
		return
	}
	b.level[line] = level
	p := b.pins[line]
	if p == nil {
		return
	}
	if err := p.Out(level); err != nil && b.pinErr == nil {
		b.pinErr = fmt.Errorf("bus: set %s %s: %w", line, level, err)
	}
}

// Wired reports whether a pin is attached to line.
func (b *Bus) Wired(line Line) bool {
	return int(line) < len(b.pins) && b.pins[line] != nil
}

// Level returns the level last requested for line.
func (b *Bus) Level(line Line) gpio.Level {
	if int(line) >= len(b.level) {
		return gpio.Low
	}
	return b.level[line]
}

// Write clocks p out over the bus, blocking until the transfer completes.
func (b *Bus) Write(p []byte) error {
	if b.c == nil {
		return ErrNotConfigured
	}
	if err := b.takePinErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	b.Set(CS, gpio.Low)
	err := b.c.Tx(p, nil)
	b.Set(CS, gpio.High)
	if err != nil {
		return fmt.Errorf("bus: write %d bytes: %w", len(p), err)
	}
	return b.takePinErr()
}

// Command sends cmd with the data/command line low, followed by params with
// the line high.
func (b *Bus) Command(cmd byte, params ...byte) error {
	b.Set(DC, gpio.Low)
	if err := b.Write([]byte{cmd}); err != nil {
		return err
	}
	if len(params) == 0 {
		return nil
	}
	return b.Data(params)
}

// Data sends p with the data/command line high.
func (b *Bus) Data(p []byte) error {
	b.Set(DC, gpio.High)
	return b.Write(p)
}

// String implements conn.Resource.
func (b *Bus) String() string {
	if b.c != nil {
		return fmt.Sprintf("bus.Bus{%s}", b.c)
	}
	return fmt.Sprintf("bus.Bus{%s}", b.port)
}

func (b *Bus) takePinErr() error {
	err := b.pinErr
	b.pinErr = nil
	return err
}
