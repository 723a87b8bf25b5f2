package png

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdam7SubImageDimensions8x8(t *testing.T) {
	// The canonical reduced-image sizes for an 8x8 base image, per the
	// PNG Adam7 pass table.
	want := [7][2]int{{1, 1}, {1, 1}, {2, 1}, {2, 2}, {4, 2}, {4, 4}, {8, 4}}
	for i, pass := range adam7Passes {
		subW := ceilDiv(8-pass.xStart, pass.xGap)
		subH := ceilDiv(8-pass.yStart, pass.yGap)
		require.Equal(t, want[i][0], subW, "pass %d width", i)
		require.Equal(t, want[i][1], subH, "pass %d height", i)
	}
}

func TestCeilDivNonPositive(t *testing.T) {
	require.Equal(t, 0, ceilDiv(0, 8))
	require.Equal(t, 0, ceilDiv(-3, 8))
}

func TestDefilterAdam7RoundTripsScatter(t *testing.T) {
	width, height, channels, bitDepth := 3, 3, 1, 8
	bpp := 1

	// Build a known full-resolution grid and re-derive, for each pass,
	// the exact sub-image bytes defilterAdam7 expects to consume (filter
	// type None everywhere), then check the scatter lands every sample
	// back at its original (x, y).
	full := make([]byte, width*height)
	for i := range full {
		full[i] = byte(i + 1)
	}

	var inflated []byte
	for _, pass := range adam7Passes {
		subW := ceilDiv(width-pass.xStart, pass.xGap)
		subH := ceilDiv(height-pass.yStart, pass.yGap)
		if subW <= 0 || subH <= 0 {
			continue
		}
		for sy := 0; sy < subH; sy++ {
			inflated = append(inflated, filterNone)
			for sx := 0; sx < subW; sx++ {
				fx := pass.xStart + sx*pass.xGap
				fy := pass.yStart + sy*pass.yGap
				inflated = append(inflated, full[fy*width+fx])
			}
		}
	}

	got, err := defilterAdam7(inflated, width, height, channels, bitDepth, bpp)
	require.Nil(t, err)
	require.Equal(t, full, got)
}
