package png

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// inflateZlib concatenates parts (the data ranges of every IDAT chunk, or a
// single compressed payload for iCCP/iTXt/zTXt) and runs them through a
// zlib inflator. klauspost/compress/zlib is API-compatible with the
// standard library's compress/zlib that fumin/png and shutej/apng both use,
// and is the compression package the rest of the retrieved corpus reaches
// for (see SPEC_FULL.md's DOMAIN STACK table) — DEFLATE itself is treated
// as an external capability per spec.md §1.
func inflateZlib(parts [][]byte) ([]byte, error) {
	readers := make([]io.Reader, len(parts))
	for i, p := range parts {
		readers[i] = bytes.NewReader(p)
	}
	zr, err := zlib.NewReader(io.MultiReader(readers...))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// defilterAll reverses the per-scanline filtering of the already-inflated
// IDAT payload, producing a packed buffer (spec.md §4.7.2). When the
// image is Adam7-interlaced, it instead walks the seven sub-images
// (spec.md §4.7.3) and interleaves their defiltered bytes into one
// full-resolution packed buffer.
func defilterAll(ctx *decodeContext, inflated []byte) ([]byte, *DecodeError) {
	h := ctx.header
	channels := h.ColorType.channels()
	if channels == 0 {
		return nil, newDecodeError(catUnsupportedColorTypeAndDepth, "IDAT: unsupported color type", 0, ctx.snapshot())
	}
	bpp := bytesPerPixel(channels, int(h.BitDepth))

	if h.InterlaceMethod == 0 {
		bpl := bytesPerLine(channels, int(h.BitDepth), int(h.Width))
		return defilterImage(inflated, int(h.Height), bpl, bpp)
	}
	return defilterAdam7(inflated, int(h.Width), int(h.Height), channels, int(h.BitDepth), bpp)
}

func bytesPerPixel(channels, bitDepth int) int {
	n := channels * bitDepth
	return (n + 7) / 8
}

func bytesPerLine(channels, bitDepth, width int) int {
	n := channels * bitDepth * width
	return (n + 7) / 8
}
