package png

import "github.com/rs/zerolog"

// DecodeOptions configures Decode. The zero value decodes with the default
// ancillary chunk set (IHDR, PLTE, IDAT, IEND, tRNS only) and non-strict
// (best-effort, warnings-accumulate) failure handling.
type DecodeOptions struct {
	// ParseChunkTypes opts into decoding additional ancillary chunks. Pass
	// []string{"*"} to decode every known ancillary type. Unknown entries
	// are ignored.
	ParseChunkTypes []string

	// StrictMode escalates warnings (CRC mismatch, ordering violation,
	// unknown compression/filter method, ...) to a fatal error. A few
	// value warnings are not escalated and are still recorded as warnings:
	// PLTE larger than 2^bitDepth, a gAMA value of 0, a pCAL parameter
	// count mismatch, a negative sCAL value, and sTER padding over 7.
	StrictMode bool

	// Force32 forces the returned Image to 8 bits per channel even for a
	// 16-bit source, matching the struct field spec.md §6.3 names
	// `force32` (so-named for the 32-bit-per-pixel RGBA result).
	Force32 bool

	// Logger receives decode trace events (one per warning/info entry) if
	// non-nil. Decode makes no I/O of its own otherwise.
	Logger *zerolog.Logger
}

func (o DecodeOptions) wantsChunk(t string) bool {
	if isCritical(t) || t == "tRNS" {
		return true
	}
	for _, want := range o.ParseChunkTypes {
		if want == "*" || want == t {
			return true
		}
	}
	return false
}

// EncodeOptions configures Encode. The zero value lets the analyzer pick
// color type, bit depth, and palette/tRNS strategy.
type EncodeOptions struct {
	// If BitDepth is non-zero, BitDepth and ColorType are both used as-is
	// instead of being chosen by the analyzer. ColorType is ignored while
	// BitDepth is zero. An invalid combination is an *EncodeError.
	BitDepth  uint8
	ColorType ColorType

	// AncillaryChunks, if set, are emitted verbatim: types whose order
	// rules put them before PLTE (cHRM, gAMA, iCCP, sBIT, sRGB) right after
	// IHDR, all others after PLTE/tRNS and before IDAT.
	AncillaryChunks []RawChunk

	// StrictMode makes a requested ColorType that differs from the
	// analyzer's choice an *EncodeError. Without it, Encode uses the
	// requested color type anyway and records a Warning. Encode never
	// upgrades a requested color type (e.g. Grayscale -> GrayscaleAlpha).
	StrictMode bool

	// IDATChunkSize bounds how many compressed bytes go into each IDAT
	// chunk; 0 means "one chunk for the whole stream". Exposed so the
	// "multiple IDAT chunks" edge case (spec.md §6.2) is reachable without
	// requiring huge test fixtures.
	IDATChunkSize int

	Logger *zerolog.Logger
}

// DecodeResult is everything a successful Decode call produces.
type DecodeResult struct {
	Image     *Image
	Header    *Header
	Palette   *Palette
	Metadata  []Metadata
	RawChunks []RawChunk
	Warnings  []Warning
	Info      []string
}

// EncodeResult is everything a successful Encode call produces.
type EncodeResult struct {
	Data     []byte
	Warnings []Warning
}
