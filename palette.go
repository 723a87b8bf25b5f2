package png

import "fmt"

// Palette is an ordered, O(1)-indexable sequence of RGB triples, as carried
// by a PLTE chunk. It borrows its backing bytes from the chunk's raw data
// rather than copying them, the same optimization the design notes (spec.md
// §9) call out for avoiding allocation during IDAT expansion.
type Palette struct {
	rgb []byte // 3 bytes per entry
}

func newPalette(data []byte) (*Palette, *DecodeError) {
	if len(data)%3 != 0 {
		return nil, newDecodeError(catChunkDataLengthShort,
			fmt.Sprintf("PLTE: Invalid data length %d (must be divisible by 3)", len(data)), 0, Snapshot{})
	}
	size := len(data) / 3
	if size < 1 || size > 256 {
		return nil, newDecodeError(catChunkDataLengthShort,
			fmt.Sprintf("PLTE: Invalid palette size %d", size), 0, Snapshot{})
	}
	return &Palette{rgb: data}, nil
}

// Size returns the number of palette entries.
func (p *Palette) Size() int {
	return len(p.rgb) / 3
}

// GetRgb returns a borrowed 3-byte [R, G, B] slice for entry i.
func (p *Palette) GetRgb(i int) ([]byte, error) {
	if i < 0 || i >= p.Size() {
		return nil, fmt.Errorf("palette index %d out of range [0, %d)", i, p.Size())
	}
	return p.rgb[3*i : 3*i+3 : 3*i+3], nil
}

// SetRgba writes entry i's color into dst[off:off+4], with the given alpha,
// without allocating. This is the write-side counterpart to GetRgb; the IDAT
// pack stage (packToRGBA) reads entries through GetRgb and does not call it.
func (p *Palette) SetRgba(dst []byte, off int, i int, alpha byte) error {
	if i < 0 || i >= p.Size() {
		return fmt.Errorf("palette index %d out of range [0, %d)", i, p.Size())
	}
	dst[off+0] = p.rgb[3*i+0]
	dst[off+1] = p.rgb[3*i+1]
	dst[off+2] = p.rgb[3*i+2]
	dst[off+3] = alpha
	return nil
}
