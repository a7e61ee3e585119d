// Package spifake provides a recording SPI port and control pins for testing
// display drivers without hardware.
//
// Every Tx is stored together with the level of the data/command and
// chip-select pins at the time of the transfer, so tests can assert both the
// bytes and the framing of each transfer.
package spifake

import (
	"bytes"
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// ErrInjected is the default failure returned when FailAt triggers.
var ErrInjected = errors.New("spifake: injected failure")

// Pin is a gpiotest.Pin that remembers every level written to it.
type Pin struct {
	gpiotest.Pin
	History []gpio.Level
	Err     error // Returned by Out when set
}

// NewPin returns a named pin resting high.
func NewPin(name string) *Pin {
	return &Pin{Pin: gpiotest.Pin{N: name, L: gpio.High}}
}

// Out records l and forwards it to the embedded pin.
func (p *Pin) Out(l gpio.Level) error {
	if p.Err != nil {
		return p.Err
	}
	p.History = append(p.History, l)
	return p.Pin.Out(l)
}

// Write is one recorded transfer.
type Write struct {
	DC   gpio.Level
	CS   gpio.Level
	Data []byte
}

// Command groups a command byte with the data bytes that followed it.
type Command struct {
	Cmd    byte
	Data   []byte // All data bytes, concatenated
	Chunks []int  // Length of each data transfer
}

// Port is a spi.Port recording all transfers made through its connection.
type Port struct {
	DC, CS, RST *Pin

	Writes []Write

	Freq  physic.Frequency
	Mode  spi.Mode
	Bits  int
	Conns int

	ConnectErr error
	FailAt     int   // 1-based index of the Tx to fail, 0 to never fail
	Err        error // Error returned by the failing Tx, ErrInjected if nil

	tx int
}

// NewPort returns a Port with fresh DC, CS and RST pins.
func NewPort() *Port {
	return &Port{DC: NewPin("DC"), CS: NewPin("CS"), RST: NewPin("RST")}
}

func (p *Port) String() string {
	return "spifake"
}

// Connect implements spi.Port.
func (p *Port) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if p.ConnectErr != nil {
		return nil, p.ConnectErr
	}
	p.Freq, p.Mode, p.Bits = f, mode, bits
	p.Conns++
	return &fakeConn{p: p}, nil
}

// Reset forgets all recorded writes.
func (p *Port) Reset() {
	p.Writes = nil
}

// Transfers returns the number of Tx calls seen, including failed ones and
// those made before the last Reset.
func (p *Port) Transfers() int {
	return p.tx
}

// Bytes returns the number of bytes written while DC was at level.
func (p *Port) Bytes(level gpio.Level) int {
	n := 0
	for _, w := range p.Writes {
		if w.DC == level {
			n += len(w.Data)
		}
	}
	return n
}

// Commands decodes the recorded writes into commands. A command starts with
// a single byte written while DC is low; data written while DC is high is
// attached to the preceding command, or to a leading Command with Cmd 0.
func (p *Port) Commands() []Command {
	var out []Command
	for _, w := range p.Writes {
		if w.DC == gpio.Low {
			for _, b := range w.Data {
				out = append(out, Command{Cmd: b})
			}
			continue
		}
		if len(out) == 0 {
			out = append(out, Command{})
		}
		c := &out[len(out)-1]
		c.Data = append(c.Data, w.Data...)
		c.Chunks = append(c.Chunks, len(w.Data))
	}
	return out
}

// Find returns the recorded commands with the given command byte.
func (p *Port) Find(cmd byte) []Command {
	var out []Command
	for _, c := range p.Commands() {
		if c.Cmd == cmd {
			out = append(out, c)
		}
	}
	return out
}

func (c Command) String() string {
	return fmt.Sprintf("0x%02X % X", c.Cmd, c.Data)
}

type fakeConn struct {
	p *Port
}

func (c *fakeConn) String() string {
	return fmt.Sprintf("spifake@%s", c.p.Freq)
}

func (c *fakeConn) Duplex() conn.Duplex {
	return conn.Half
}

func (c *fakeConn) Tx(w, r []byte) error {
	c.p.tx++
	if c.p.FailAt != 0 && c.p.tx == c.p.FailAt {
		if c.p.Err != nil {
			return c.p.Err
		}
		return ErrInjected
	}
	c.p.Writes = append(c.p.Writes, Write{
		DC:   c.p.DC.Read(),
		CS:   c.p.CS.Read(),
		Data: bytes.Clone(w),
	})
	return nil
}

func (c *fakeConn) TxPackets(pkts []spi.Packet) error {
	for _, pkt := range pkts {
		if err := c.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}
