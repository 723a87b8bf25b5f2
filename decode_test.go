package png

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

type rawTestChunk struct {
	typ  string
	data []byte
}

func buildPNGBytes(chunks []rawTestChunk) []byte {
	var buf bytes.Buffer
	buf.Write(signature[:])
	for _, c := range chunks {
		writeChunk(&buf, c.typ, c.data)
	}
	return buf.Bytes()
}

func deflateForTest(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func minimalTruecolorPNG(t *testing.T, r, g, b byte) []byte {
	t.Helper()
	header := &Header{Width: 1, Height: 1, BitDepth: 8, ColorType: ColorTruecolor}
	row := []byte{filterNone, r, g, b}
	return buildPNGBytes([]rawTestChunk{
		{"IHDR", encodeIHDR(header)},
		{"IDAT", deflateForTest(t, row)},
		{"IEND", nil},
	})
}

func TestDecodeMinimalValidTruecolor(t *testing.T) {
	data := minimalTruecolorPNG(t, 10, 20, 30)
	result, err := Decode(data, DecodeOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Image.Width)
	require.Equal(t, 1, result.Image.Height)
	require.Equal(t, []byte{10, 20, 30, 255}, result.Image.At8(0, 0))
}

func TestDecodeTooShortSignature(t *testing.T) {
	_, err := Decode(signature[:4], DecodeOptions{})
	require.Error(t, err)
	decErr, ok := err.(*DecodeError)
	require.True(t, ok)
	require.Equal(t, catNotEnoughBytesForSignature, decErr.Category)
}

func TestDecodeCrcMismatch(t *testing.T) {
	data := minimalTruecolorPNG(t, 1, 2, 3)
	corrupted := append([]byte(nil), data...)
	corrupted[len(corrupted)-1] ^= 0xFF // flip every bit of the last byte of IEND's CRC

	_, err := Decode(corrupted, DecodeOptions{StrictMode: true})
	require.Error(t, err)
	decErr, ok := err.(*DecodeError)
	require.True(t, ok)
	require.Equal(t, catChunkCrcMismatch, decErr.Category)

	result, err := Decode(corrupted, DecodeOptions{StrictMode: false})
	require.NoError(t, err)
	require.NotEmpty(t, result.Warnings)
	require.Contains(t, result.Warnings[0].Message, "CRC for chunk")
}

func TestDecodeFirstChunkMustBeIHDR(t *testing.T) {
	data := buildPNGBytes([]rawTestChunk{
		{"IEND", nil},
	})
	_, err := Decode(data, DecodeOptions{})
	require.Error(t, err)
	decErr, ok := err.(*DecodeError)
	require.True(t, ok)
	require.Equal(t, catFirstChunkNotIhdr, decErr.Category)
}

func TestDecodeSBITIsOptIn(t *testing.T) {
	img := NewImage(1, 1, 8)
	px := img.At8(0, 0)
	px[0], px[1], px[2], px[3] = 128, 128, 128, 255

	sbitChunk := RawChunk{Type: "sBIT", Data: []byte{6}}
	result, err := Encode(img, EncodeOptions{
		BitDepth:        8,
		ColorType:       ColorGrayscale,
		AncillaryChunks: []RawChunk{sbitChunk},
	})
	require.NoError(t, err)

	decodedDefault, err := Decode(result.Data, DecodeOptions{})
	require.NoError(t, err)
	require.Empty(t, decodedDefault.Metadata)

	decodedOptIn, err := Decode(result.Data, DecodeOptions{ParseChunkTypes: []string{"sBIT"}})
	require.NoError(t, err)
	require.Len(t, decodedOptIn.Metadata, 1)
	sbit, ok := decodedOptIn.Metadata[0].(*SBIT)
	require.True(t, ok)
	require.Equal(t, []uint8{6}, sbit.Value)
}
