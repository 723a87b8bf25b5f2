package png

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackToRGBAOutOfRangePaletteIndex(t *testing.T) {
	header := &Header{Width: 1, Height: 1, BitDepth: 8, ColorType: ColorIndexed}
	palette, err := newPalette([]byte{1, 2, 3}) // single entry
	require.Nil(t, err)

	ctx := newDecodeContext(DecodeOptions{}, nil)
	ctx.header = header
	ctx.palette = palette

	packed := []byte{5} // index 5, but palette only has one entry
	_, perr := packToRGBA(ctx, packed)
	require.NotNil(t, perr)
	require.Equal(t, catOutOfRangePaletteIndex, perr.Category)
}

func TestPackToRGBAGrayscale16Bit(t *testing.T) {
	header := &Header{Width: 2, Height: 1, BitDepth: 16, ColorType: ColorGrayscale}
	ctx := newDecodeContext(DecodeOptions{}, nil)
	ctx.header = header

	packed := []byte{0x01, 0x02, 0xFF, 0xFF}
	img, perr := packToRGBA(ctx, packed)
	require.Nil(t, perr)
	require.Equal(t, uint8(16), img.BitDepth)

	px0 := img.At16(0, 0)
	require.Equal(t, []byte{0x01, 0x02, 0x01, 0x02, 0x01, 0x02, 0xFF, 0xFF}, px0)
	px1 := img.At16(1, 0)
	require.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, px1)
}

func TestApplyTransparencyGrayscaleColorKey(t *testing.T) {
	header := &Header{Width: 2, Height: 1, BitDepth: 8, ColorType: ColorGrayscale}
	img := NewImage(2, 1, 8)
	px0 := img.At8(0, 0)
	px0[0], px0[1], px0[2], px0[3] = 77, 77, 77, 255
	px1 := img.At8(1, 0)
	px1[0], px1[1], px1[2], px1[3] = 50, 50, 50, 255

	trns := &TRNS{Gray: 77}
	applyTransparency(img, header, trns)

	require.Equal(t, byte(0), img.At8(0, 0)[3])
	require.Equal(t, byte(255), img.At8(1, 0)[3])
}
