// Package tuipanel runs a character-cell terminal UI on an SPI display panel.
//
// The pipeline, from the wire up:
//
//   - bus: the SPI port plus chip-select, data/command and reset lines
//   - ili9342c: the panel protocol, orientation and chunked rectangle writes
//   - backend: rasterizes terminal cells into panel rectangles
//   - term: the cell grid the UI composes every frame
//
// Boot brings the pipeline up in order and reports a *BootFailure if the
// display cannot be made usable. Firmware.Run then draws a frame, idles, and
// repeats; frame failures are logged and the next frame is a full redraw.
//
// # Basic Usage
//
//	fw, err := tuipanel.Boot(tuipanel.Config{
//		SPI:          port,
//		Pins:         bus.Pins{CS: cs, DC: dc, RST: rst},
//		Backlight:    bl,
//		MaxFrequency: 80 * physic.MegaHertz,
//		Frequency:    80 * physic.MegaHertz,
//		Mode:         spi.Mode3,
//		Orientation:  ili9342c.Orientation{Rotation: ili9342c.Deg270, Mirrored: true},
//	})
//	if err != nil {
//		tuipanel.Halt(err)
//	}
//	fw.Run(context.Background(), func(f *term.Frame) {
//		f.Render(term.NewParagraph("Hello"), f.Area())
//	})
package tuipanel
