package png

import "fmt"

// signature is the eight magic bytes every PNG datastream begins with, per
// spec.md §4.3. klausman/pngrep calls the same bytes PNGMagic; this module
// keeps the lowercase-field convention of the teacher instead.
var signature = [8]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func checkSignature(b []byte) *DecodeError {
	if len(b) < 8 {
		return newDecodeError(catNotEnoughBytesForSignature,
			fmt.Sprintf("Not enough bytes in file for png signature (%d)", len(b)), 0, Snapshot{})
	}
	for i := range signature {
		if b[i] != signature[i] {
			return newDecodeError(catSignatureMismatch,
				fmt.Sprintf("PNG signature mismatch (got 0x%x, expected 0x%x)", b[:8], signature), 0, Snapshot{})
		}
	}
	return nil
}
