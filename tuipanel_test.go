package tuipanel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/flavioheleno/tuipanel/bus"
	"github.com/flavioheleno/tuipanel/ili9342c"
	"github.com/flavioheleno/tuipanel/internal/spifake"
	"github.com/flavioheleno/tuipanel/term"
)

const (
	cmdCASET  = 0x2A
	cmdRASET  = 0x2B
	cmdRAMWR  = 0x2C
	cmdMADCTL = 0x36
)

func testConfig(port *spifake.Port, bl gpio.PinOut) Config {
	return Config{
		SPI:          port,
		Pins:         bus.Pins{CS: port.CS, DC: port.DC, RST: port.RST},
		Backlight:    bl,
		MaxFrequency: 80 * physic.MegaHertz,
		Frequency:    80 * physic.MegaHertz,
		Mode:         spi.Mode3,
		Panel:        ili9342c.Opts{Delay: func(time.Duration) {}},
		Orientation:  ili9342c.Orientation{Rotation: ili9342c.Deg270, Mirrored: true},
		Interval:     time.Millisecond,
	}
}

func TestBoot(t *testing.T) {
	port := spifake.NewPort()
	bl := spifake.NewPin("BL")
	bl.L = gpio.Low

	fw, err := Boot(testConfig(port, bl))
	require.NoError(t, err)

	require.Equal(t, 80*physic.MegaHertz, port.Freq)
	require.Equal(t, spi.Mode3, port.Mode)
	require.Equal(t, gpio.High, bl.Read(), "backlight on after init")

	madctl := port.Find(cmdMADCTL)
	require.Len(t, madctl, 2, "init then orientation")
	require.Equal(t, []byte{0x20}, madctl[1].Data, "270° mirrored")

	w, h := fw.Panel().Size()
	require.Equal(t, 240, w)
	require.Equal(t, 320, h)

	cols, rows := fw.Terminal().Size()
	require.Equal(t, 34, cols)
	require.Equal(t, 24, rows)

	ramwr := port.Find(cmdRAMWR)
	require.Len(t, ramwr, 1, "boot clears the panel")
	require.Len(t, ramwr[0].Data, 240*320*2)
	for _, b := range ramwr[0].Data {
		if b != 0 {
			t.Fatalf("clear wrote non-black byte 0x%02X", b)
		}
	}
}

func TestBootFailure(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config, *spifake.Port)
		stage string
	}{
		{
			name:  "frequency above limit",
			mod:   func(c *Config, _ *spifake.Port) { c.Frequency = 100 * physic.MegaHertz },
			stage: "bus",
		},
		{
			name:  "connect error",
			mod:   func(_ *Config, p *spifake.Port) { p.ConnectErr = errors.New("busy") },
			stage: "bus",
		},
		{
			name:  "missing DC",
			mod:   func(c *Config, _ *spifake.Port) { c.Pins.DC = nil },
			stage: "bus",
		},
		{
			name:  "init write",
			mod:   func(_ *Config, p *spifake.Port) { p.FailAt = 1 },
			stage: "panel",
		},
		{
			// SLPOUT, COLMOD+data, MADCTL+data, INVOFF, NORON, DISPON
			name:  "orientation write",
			mod:   func(_ *Config, p *spifake.Port) { p.FailAt = 9 },
			stage: "orientation",
		},
		{
			name: "invalid orientation",
			mod: func(c *Config, _ *spifake.Port) {
				c.Orientation = ili9342c.Orientation{Rotation: ili9342c.Rotation(7)}
			},
			stage: "orientation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := spifake.NewPort()
			cfg := testConfig(port, nil)
			tt.mod(&cfg, port)

			fw, err := Boot(cfg)
			require.Nil(t, fw)
			var bf *BootFailure
			require.ErrorAs(t, err, &bf)
			require.Equal(t, tt.stage, bf.Stage)
			require.Error(t, bf.Unwrap())
		})
	}
}

func TestBootBacklightFirst(t *testing.T) {
	port := spifake.NewPort()
	port.ConnectErr = errors.New("busy")
	bl := spifake.NewPin("BL")
	bl.L = gpio.Low

	_, err := Boot(testConfig(port, bl))
	var bf *BootFailure
	require.ErrorAs(t, err, &bf)
	require.Equal(t, "bus", bf.Stage)
	require.Equal(t, []gpio.Level{gpio.High}, bl.History, "backlight is on before the bus is touched")

	port = spifake.NewPort()
	bl = spifake.NewPin("BL")
	bl.Err = errors.New("pin busy")
	_, err = Boot(testConfig(port, bl))
	require.ErrorAs(t, err, &bf)
	require.Equal(t, "backlight", bf.Stage)
	require.Zero(t, port.Conns)
}

func TestBootClearFailureIsNotFatal(t *testing.T) {
	port := spifake.NewPort()
	cfg := testConfig(port, nil)
	// Orientation is transfer 9, the clear starts at 10.
	port.FailAt = 10

	fw, err := Boot(cfg)
	require.NoError(t, err)
	require.NotNil(t, fw)
}

func TestFirstFrame(t *testing.T) {
	port := spifake.NewPort()
	fw, err := Boot(testConfig(port, nil))
	require.NoError(t, err)
	port.Reset()

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	require.NoError(t, fw.Frame(func(f *term.Frame) {
		f.SetContent(0, 0, 'H', style)
	}))

	cmds := port.Commands()
	require.Len(t, cmds, 3)
	require.Equal(t, byte(cmdCASET), cmds[0].Cmd)
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x06}, cmds[0].Data)
	require.Equal(t, byte(cmdRASET), cmds[1].Cmd)
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x0C}, cmds[1].Data)
	require.Equal(t, byte(cmdRAMWR), cmds[2].Cmd)
	require.Len(t, cmds[2].Data, 7*13*2)
	require.Equal(t, []int{182}, cmds[2].Chunks)

	lit := 0
	for i := 0; i < len(cmds[2].Data); i += 2 {
		if cmds[2].Data[i] == 0xFF && cmds[2].Data[i+1] == 0xFF {
			lit++
		}
	}
	require.Positive(t, lit, "glyph pixels are white")

	for _, w := range port.Writes {
		require.Equal(t, gpio.Low, w.CS, "chip select held during transfers")
	}

	require.Equal(t, 1, fw.Frames())
	require.Zero(t, fw.Failures())
}

func TestUnchangedFrameSendsNothing(t *testing.T) {
	port := spifake.NewPort()
	fw, err := Boot(testConfig(port, nil))
	require.NoError(t, err)

	ui := func(f *term.Frame) {
		f.Render(term.NewParagraph("Hello"), f.Area())
	}
	require.NoError(t, fw.Frame(ui))
	port.Reset()
	require.NoError(t, fw.Frame(ui))
	require.Empty(t, port.Writes)
}

func TestFrameFailureForcesRedraw(t *testing.T) {
	port := spifake.NewPort()
	fw, err := Boot(testConfig(port, nil))
	require.NoError(t, err)

	ui := func(f *term.Frame) {
		f.Render(term.NewParagraph("Hello"), f.Area())
	}
	port.FailAt = port.Transfers() + 1
	require.Error(t, fw.Frame(ui))
	require.Equal(t, 1, fw.Failures())

	port.Reset()
	require.NoError(t, fw.Frame(ui))
	cols, rows := fw.Terminal().Size()
	require.Len(t, port.Find(cmdRAMWR), cols*rows, "full redraw after a failed frame")
	require.Equal(t, 2, fw.Frames())
	require.Equal(t, 1, fw.Failures())
}

func TestRun(t *testing.T) {
	port := spifake.NewPort()
	fw, err := Boot(testConfig(port, nil))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := 0
	err = fw.Run(ctx, func(f *term.Frame) {
		n++
		f.Render(term.NewParagraph("Hello"), f.Area())
		if n == 3 {
			cancel()
		}
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 3, fw.Frames())
	require.Zero(t, fw.Failures())
}

func TestRunSurvivesFailures(t *testing.T) {
	port := spifake.NewPort()
	fw, err := Boot(testConfig(port, nil))
	require.NoError(t, err)
	port.FailAt = port.Transfers() + 1

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := 0
	err = fw.Run(ctx, func(f *term.Frame) {
		n++
		f.SetContent(0, 0, rune('0'+n), tcell.StyleDefault)
		if n == 2 {
			cancel()
		}
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 2, fw.Frames())
	require.Equal(t, 1, fw.Failures())
}

func TestBootFailureError(t *testing.T) {
	err := &BootFailure{Stage: "panel", Err: spifake.ErrInjected}
	require.Equal(t, "tuipanel: boot failed at panel: spifake: injected failure", err.Error())
	require.ErrorIs(t, err, spifake.ErrInjected)
}
