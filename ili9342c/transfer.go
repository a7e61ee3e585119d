package ili9342c

import (
	"iter"

	"github.com/flavioheleno/tuipanel/rgb565"
)

// DefaultBufferSize is the capacity of the transfer buffer in bytes.
const DefaultBufferSize = 4096

// transferBuffer stages pixels for the bus. Its length is always a whole
// number of pixels so a chunk never splits one.
type transferBuffer []byte

func newTransferBuffer(size int) transferBuffer {
	size -= size % rgb565.BytesPerPixel
	return make(transferBuffer, size)
}

// capacity returns the number of pixels per chunk.
func (t transferBuffer) capacity() int {
	return len(t) / rgb565.BytesPerPixel
}

// stream encodes the first n colours of pix into t and hands each full buffer
// to write, then the final partial buffer. It returns the number of pixels
// sent.
func (t transferBuffer) stream(pix iter.Seq[rgb565.Color], n int, write func([]byte) error) (int, error) {
	fill, sent := 0, 0
	for c := range pix {
		if sent == n {
			break
		}
		t[fill], t[fill+1] = c.Bytes()
		fill += rgb565.BytesPerPixel
		sent++
		if fill == len(t) {
			if err := write(t); err != nil {
				return sent, err
			}
			fill = 0
		}
	}
	if fill > 0 {
		if err := write(t[:fill]); err != nil {
			return sent, err
		}
	}
	return sent, nil
}

// repeat yields c forever.
func repeat(c rgb565.Color) iter.Seq[rgb565.Color] {
	return func(yield func(rgb565.Color) bool) {
		for yield(c) {
		}
	}
}
