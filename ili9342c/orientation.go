package ili9342c

import "fmt"

// Rotation is the clockwise rotation applied to the panel's addressing.
type Rotation uint8

const (
	Deg0 Rotation = iota
	Deg90
	Deg180
	Deg270
)

func (r Rotation) String() string {
	switch r {
	case Deg0:
		return "0°"
	case Deg90:
		return "90°"
	case Deg180:
		return "180°"
	case Deg270:
		return "270°"
	}
	return fmt.Sprintf("Rotation(%d)", uint8(r))
}

// Orientation is a rotation plus optional horizontal mirroring.
type Orientation struct {
	Rotation Rotation
	Mirrored bool
}

func (o Orientation) String() string {
	if o.Mirrored {
		return o.Rotation.String() + " mirrored"
	}
	return o.Rotation.String()
}

// swapsAxes reports whether logical x runs along the native rows.
func (o Orientation) swapsAxes() bool {
	return o.Rotation == Deg90 || o.Rotation == Deg270
}

func (o Orientation) valid() bool {
	return o.Rotation <= Deg270
}

// madctl encodes o as a memory access control value. Mirroring reverses the
// logical column order, which is the native row order when the axes are
// exchanged.
func (o Orientation) madctl() byte {
	var v byte
	switch o.Rotation {
	case Deg90:
		v = madctlMV | madctlMX
	case Deg180:
		v = madctlMX | madctlMY
	case Deg270:
		v = madctlMV | madctlMY
	}
	if o.Mirrored {
		if o.swapsAxes() {
			v ^= madctlMY
		} else {
			v ^= madctlMX
		}
	}
	return v
}
