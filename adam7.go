package png

// adam7Pass describes one of the seven interlacing passes, per spec.md
// §4.7.3's 8x8-lattice table.
type adam7Pass struct {
	xStart, yStart, xGap, yGap int
}

var adam7Passes = [7]adam7Pass{
	{0, 0, 8, 8},
	{4, 0, 8, 8},
	{0, 4, 4, 8},
	{2, 0, 4, 4},
	{0, 2, 2, 4},
	{1, 0, 2, 2},
	{0, 1, 1, 2},
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// defilterAdam7 defilters the seven Adam7 sub-images in turn (each
// consumed from the already-inflated stream as it goes, since sub-image
// boundaries are not separately length-prefixed) and scatters their pixels
// into one full-resolution packed buffer.
func defilterAdam7(inflated []byte, width, height, channels, bitDepth, bpp int) ([]byte, *DecodeError) {
	full := make([]byte, bytesPerLine(channels, bitDepth, width)*height)
	fullBpl := bytesPerLine(channels, bitDepth, width)

	cursor := 0
	for _, pass := range adam7Passes {
		subW := ceilDiv(width-pass.xStart, pass.xGap)
		subH := ceilDiv(height-pass.yStart, pass.yGap)
		if subW <= 0 || subH <= 0 {
			continue
		}
		subBpl := bytesPerLine(channels, bitDepth, subW)
		stride := subBpl + 1
		need := stride * subH
		if cursor+need > len(inflated) {
			return nil, newDecodeError(catChunkDataLengthShort, "IDAT: not enough pixel data for interlaced pass", 0, Snapshot{})
		}
		sub, err := defilterImage(inflated[cursor:cursor+need], subH, subBpl, bpp)
		if err != nil {
			return nil, err
		}
		cursor += need

		for sy := 0; sy < subH; sy++ {
			fy := pass.yStart + sy*pass.yGap
			subRow := sub[sy*subBpl : sy*subBpl+subBpl]
			fullRow := full[fy*fullBpl : fy*fullBpl+fullBpl]
			for sx := 0; sx < subW; sx++ {
				fx := pass.xStart + sx*pass.xGap
				for c := 0; c < channels; c++ {
					v := getSample(subRow, sx, c, channels, bitDepth)
					setSample(fullRow, fx, c, channels, bitDepth, v)
				}
			}
		}
	}
	return full, nil
}
