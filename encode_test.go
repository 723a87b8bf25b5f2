package png

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTripTruecolorAlpha(t *testing.T) {
	// 17x16 = 272 pixels: more than the 256-color indexed limit, so the
	// analyzer can't fall back to a palette and must pick TruecolorAlpha.
	width, height := 17, 16
	img := NewImage(width, height, 8)
	n := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := img.At8(x, y)
			px[0] = byte(n)
			px[1] = byte(n*7 + 13)
			px[2] = byte(n*13 + 1)
			px[3] = byte(150 + n%40) // varying, non-binary alpha: forces a real alpha channel
			n++
		}
	}

	result, err := Encode(img, EncodeOptions{})
	require.NoError(t, err)

	decoded, err := Decode(result.Data, DecodeOptions{})
	require.NoError(t, err)
	require.Equal(t, ColorTruecolorAlpha, decoded.Header.ColorType)
	require.Equal(t, img.Pix, decoded.Image.Pix)
}

func TestEncodeDecodeRoundTripIndexed(t *testing.T) {
	img := NewImage(4, 2, 8)
	colors := [][4]byte{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}}
	i := 0
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			c := colors[i%len(colors)]
			px := img.At8(x, y)
			px[0], px[1], px[2], px[3] = c[0], c[1], c[2], c[3]
			i++
		}
	}

	result, err := Encode(img, EncodeOptions{})
	require.NoError(t, err)

	decoded, err := Decode(result.Data, DecodeOptions{})
	require.NoError(t, err)
	require.Equal(t, ColorIndexed, decoded.Header.ColorType)
	require.Equal(t, img.Pix, decoded.Image.Pix)
}

func TestEncodeDecodeRoundTripTruecolorColorKey(t *testing.T) {
	width, height := 32, 16
	img := NewImage(width, height, 8)
	i := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := img.At8(x, y)
			px[0], px[1], px[2], px[3] = byte(i), byte(i/2), 0, 255
			i++
		}
	}
	// Overwrite a few pixels with a fully-transparent color never used
	// elsewhere in the opaque data (b stays 0 there, never 253).
	for _, p := range [][2]int{{0, 0}, {width - 1, height - 1}} {
		px := img.At8(p[0], p[1])
		px[0], px[1], px[2], px[3] = 255, 254, 253, 0
	}

	result, err := Encode(img, EncodeOptions{})
	require.NoError(t, err)

	decoded, err := Decode(result.Data, DecodeOptions{})
	require.NoError(t, err)
	require.Equal(t, ColorTruecolor, decoded.Header.ColorType)

	for _, p := range [][2]int{{0, 0}, {width - 1, height - 1}} {
		require.Equal(t, byte(0), decoded.Image.At8(p[0], p[1])[3])
	}
	require.Equal(t, byte(255), decoded.Image.At8(1, 0)[3])
}

func TestEncodeEmptyImageRejected(t *testing.T) {
	_, err := Encode(&Image{Width: 0, Height: 0}, EncodeOptions{})
	require.Error(t, err)
}

func TestEncodeStrictModeRefusesColorTypeMismatch(t *testing.T) {
	img := NewImage(2, 2, 8)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			px := img.At8(x, y)
			px[0], px[1], px[2], px[3] = byte(x * 100), byte(y * 100), 9, 255
		}
	}
	_, err := Encode(img, EncodeOptions{BitDepth: 8, ColorType: ColorGrayscale, StrictMode: true})
	require.Error(t, err)
	_, ok := err.(*EncodeError)
	require.True(t, ok)
}
