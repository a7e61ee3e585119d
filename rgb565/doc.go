// Package rgb565 provides the 16-bit colour format used by ILI9342C class panels.
//
// Each pixel occupies two bytes on the wire, most significant byte first:
//
//	bit:   15..11  10..5  4..0
//	field: red     green  blue
//
// This package provides:
//
// - Color: a 5-6-5 packed colour value
// - Model: a color.Model converting any Go colour to Color
// - Image: an image.Image backed by wire-format bytes
//
// Example usage:
//
//	img := rgb565.NewImage(image.Rect(0, 0, 7, 13))
//	img.SetRGB565(3, 4, rgb565.White)
//	for c := range img.Pixels() {
//		_ = c // row-major, ready to stream to the panel
//	}
package rgb565
