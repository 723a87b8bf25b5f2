package png

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDecodeMetadataMatchesEncodedAncillaryChunks(t *testing.T) {
	data := buildPNGBytes([]rawTestChunk{
		{"IHDR", encodeIHDR(&Header{Width: 1, Height: 1, BitDepth: 8, ColorType: ColorTruecolor})},
		{"pHYs", []byte{0, 0, 0x0B, 0x13, 0, 0, 0x0B, 0x13, 1}},
		{"tIME", []byte{0x07, 0xE6, 3, 15, 12, 30, 45}},
		{"tEXt", append([]byte("Author\x00"), []byte("jane")...)},
		{"IDAT", deflateForTest(t, []byte{filterNone, 1, 2, 3})},
		{"IEND", nil},
	})

	result, err := Decode(data, DecodeOptions{ParseChunkTypes: []string{"*"}})
	require.NoError(t, err)
	require.Len(t, result.Metadata, 3)

	want := []Metadata{
		&PHYS{X: 2835, Y: 2835, Unit: 1},
		&TIME{Year: 2022, Month: 3, Day: 15, Hour: 12, Minute: 30, Second: 45},
		&TEXT{Keyword: "Author", Text: "jane"},
	}

	if diff := cmp.Diff(want, result.Metadata); diff != "" {
		t.Fatalf("decoded metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMetadataOmittedWhenNotOptedIn(t *testing.T) {
	data := buildPNGBytes([]rawTestChunk{
		{"IHDR", encodeIHDR(&Header{Width: 1, Height: 1, BitDepth: 8, ColorType: ColorTruecolor})},
		{"pHYs", []byte{0, 0, 0x0B, 0x13, 0, 0, 0x0B, 0x13, 1}},
		{"IDAT", deflateForTest(t, []byte{filterNone, 1, 2, 3})},
		{"IEND", nil},
	})

	result, err := Decode(data, DecodeOptions{})
	require.NoError(t, err)

	if diff := cmp.Diff([]Metadata(nil), result.Metadata); diff != "" {
		t.Fatalf("expected no metadata without opt-in (-want +got):\n%s", diff)
	}
}
