package ili9342c

import "time"

// Command set shared by the ILI934x family.
const (
	cmdSWRESET = 0x01 // Software reset
	cmdSLPOUT  = 0x11 // Sleep out
	cmdNORON   = 0x13 // Normal display mode on
	cmdINVOFF  = 0x20 // Display inversion off
	cmdINVON   = 0x21 // Display inversion on
	cmdDISPOFF = 0x28 // Display off
	cmdDISPON  = 0x29 // Display on
	cmdCASET   = 0x2A // Column address set
	cmdRASET   = 0x2B // Row address set
	cmdRAMWR   = 0x2C // Memory write
	cmdMADCTL  = 0x36 // Memory access control
	cmdCOLMOD  = 0x3A // Interface pixel format
)

// MADCTL bits.
const (
	madctlMY  = 0x80 // Row address order
	madctlMX  = 0x40 // Column address order
	madctlMV  = 0x20 // Row/column exchange
	madctlBGR = 0x08 // BGR colour filter panel
)

// colmod16 selects 16 bits per pixel on both the RGB and MCU interfaces.
const colmod16 = 0x55

// Timings from the datasheet, with some margin.
const (
	resetPulse     = 10 * time.Millisecond
	resetSettle    = 120 * time.Millisecond
	sleepOutDelay  = 120 * time.Millisecond
	displayOnDelay = 20 * time.Millisecond
)

// step is one entry of the power-on sequence.
type step struct {
	cmd    byte
	params []byte
	delay  time.Duration
}

// initSequence returns the commands taking the controller from reset to a
// displaying state.
func initSequence(madctl byte, invert bool) []step {
	inv := byte(cmdINVOFF)
	if invert {
		inv = cmdINVON
	}
	return []step{
		{cmd: cmdSLPOUT, delay: sleepOutDelay},
		{cmd: cmdCOLMOD, params: []byte{colmod16}},
		{cmd: cmdMADCTL, params: []byte{madctl}},
		{cmd: inv},
		{cmd: cmdNORON},
		{cmd: cmdDISPON, delay: displayOnDelay},
	}
}
