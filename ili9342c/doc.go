// Package ili9342c controls an ILI9342C TFT panel via SPI.
//
// The ILI9342C is a 320×240 RGB565 controller commonly found on ESP32 and
// M5Stack class boards. This driver implements the display.Drawer interface
// from periph.io.
//
// # Display Characteristics
//
// - 16-bit colour (RGB565), two bytes per pixel on the wire
// - Native resolution 320×240, landscape
// - Rotation in 90° steps with optional mirroring, applied by the controller
// - Optional colour inversion and BGR panels
//
// # Hardware Connection
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCK         → SPI Clock (SCLK)
//	SDI/MOSI    → SPI Data (MOSI)
//	DC          → GPIO (any available pin)
//	CS          → GPIO or SPI Chip Select
//	RST         → Optional: GPIO for hardware reset
//	BL          → Optional: GPIO for backlight enable
//
// # Basic Usage
//
//	b, _ := bus.New(spiPort, bus.Pins{CS: cs, DC: dc, RST: rst}, 80*physic.MegaHertz)
//	_ = b.Configure(40*physic.MegaHertz, spi.Mode3)
//
//	dev, err := ili9342c.New(b, &ili9342c.Opts{
//		Orientation: ili9342c.Orientation{Rotation: ili9342c.Deg270, Mirrored: true},
//	})
//	if err != nil {
//		// The display is unusable.
//	}
//	dev.FillRect(0, 0, 240, 320, rgb565.Black)
//
// # Rectangle Writes
//
// WriteRect sets an address window covering the rectangle and streams its
// pixels through a fixed transfer buffer (4096 bytes by default, see
// Opts.BufferSize). Large rectangles are split into buffer-sized bus writes,
// never splitting a pixel, so memory use does not grow with the rectangle.
// Zero-area rectangles send nothing.
//
// # Orientation
//
// Coordinates passed to WriteRect, FillRect and Draw are logical: after
// SetOrientation with a 90° or 270° rotation the panel reports 240×320 and
// the controller maps the address window accordingly.
//
// # Datasheet
//
// https://www.ilitek.com/ (ILI9342C datasheet, V1.x)
package ili9342c
