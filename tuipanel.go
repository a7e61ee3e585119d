package tuipanel

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/flavioheleno/tuipanel/backend"
	"github.com/flavioheleno/tuipanel/bus"
	"github.com/flavioheleno/tuipanel/ili9342c"
	"github.com/flavioheleno/tuipanel/term"
)

// DefaultInterval is the idle time between frames.
const DefaultInterval = time.Second

// Config describes the hardware and the rendering setup.
type Config struct {
	SPI       spi.Port
	Pins      bus.Pins
	Backlight gpio.PinOut // Optional

	MaxFrequency physic.Frequency // Hardware limit of the bus
	Frequency    physic.Frequency
	Mode         spi.Mode

	Panel       ili9342c.Opts // Geometry, inversion, buffer size
	Orientation ili9342c.Orientation
	Backend     backend.Options

	Interval time.Duration // Default: DefaultInterval
}

// BootFailure is returned by Boot when the display could not be brought up.
// There is no recovery: the device is useless without its display.
type BootFailure struct {
	Stage string
	Err   error
}

func (e *BootFailure) Error() string {
	return fmt.Sprintf("tuipanel: boot failed at %s: %v", e.Stage, e.Err)
}

func (e *BootFailure) Unwrap() error {
	return e.Err
}

// DrawFunc composes one frame.
type DrawFunc func(*term.Frame)

// Firmware is a booted display pipeline.
type Firmware struct {
	panel    *ili9342c.Dev
	term     *term.Terminal
	interval time.Duration

	frames   int
	failures int
}

// Boot switches the backlight on, configures the bus, initializes and orients
// the panel and binds a terminal to it. Any failure up to and including
// orientation is returned as a *BootFailure. The panel is then cleared; a
// failed clear is only logged.
func Boot(cfg Config) (*Firmware, error) {
	if cfg.Backlight != nil {
		if err := cfg.Backlight.Out(gpio.High); err != nil {
			return nil, &BootFailure{Stage: "backlight", Err: err}
		}
	}
	b, err := bus.New(cfg.SPI, cfg.Pins, cfg.MaxFrequency)
	if err != nil {
		return nil, &BootFailure{Stage: "bus", Err: err}
	}
	if err := b.Configure(cfg.Frequency, cfg.Mode); err != nil {
		return nil, &BootFailure{Stage: "bus", Err: err}
	}
	glog.V(1).Infof("bus configured: %s %s", cfg.Frequency, cfg.Mode)

	opts := cfg.Panel
	if opts.Backlight == nil {
		opts.Backlight = cfg.Backlight
	}
	dev, err := ili9342c.New(b, &opts)
	if err != nil {
		return nil, &BootFailure{Stage: "panel", Err: err}
	}
	if err := dev.SetOrientation(cfg.Orientation); err != nil {
		return nil, &BootFailure{Stage: "orientation", Err: err}
	}

	be, err := backend.New(dev, &cfg.Backend)
	if err != nil {
		return nil, &BootFailure{Stage: "backend", Err: err}
	}
	t, err := term.New(be)
	if err != nil {
		return nil, &BootFailure{Stage: "terminal", Err: err}
	}
	cols, rows := t.Size()
	glog.Infof("display ready: %s, %dx%d cells", dev, cols, rows)

	if err := t.Clear(); err != nil {
		glog.Warningf("clear: %v", err)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Firmware{panel: dev, term: t, interval: interval}, nil
}

// Run draws a frame with ui, idles for the configured interval and repeats
// until ctx is done. Frame failures are logged and counted, never retried;
// the next frame repaints the whole grid.
func (fw *Firmware) Run(ctx context.Context, ui DrawFunc) error {
	for {
		_ = fw.Frame(ui)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(fw.interval):
		}
	}
}

// Frame composes and submits one frame.
func (fw *Firmware) Frame(ui DrawFunc) error {
	fw.frames++
	if err := fw.term.Draw(ui); err != nil {
		fw.failures++
		glog.Warningf("frame %d: %v (%d failed so far)", fw.frames, err, fw.failures)
		return err
	}
	glog.V(2).Infof("frame %d submitted", fw.frames)
	return nil
}

// Frames returns the number of frames submitted.
func (fw *Firmware) Frames() int {
	return fw.frames
}

// Failures returns the number of frames that failed to reach the panel.
func (fw *Firmware) Failures() int {
	return fw.failures
}

// Panel returns the panel driver.
func (fw *Firmware) Panel() *ili9342c.Dev {
	return fw.panel
}

// Terminal returns the terminal bound to the panel.
func (fw *Firmware) Terminal() *term.Terminal {
	return fw.term
}

// Halt reports err forever. It is the end of the line for a device whose
// display failed to boot.
func Halt(err error) {
	for {
		glog.Error(err)
		glog.Flush()
		time.Sleep(time.Second)
	}
}
