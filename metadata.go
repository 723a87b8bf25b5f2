package png

import (
	"fmt"
	"strconv"
	"strings"
)

// Metadata is the common interface implemented by every decoded ancillary
// chunk value. The concrete types below mirror the payload table in
// spec.md §6.2; ChunkType returns the four-letter chunk type that produced
// the value, so callers can type-switch or filter by name.
type Metadata interface {
	ChunkType() string
}

type metadataDecodeFunc func(data []byte, ctx *decodeContext) (Metadata, *DecodeError)

// metadataDecoders is the tagged dispatch table the design note in
// spec.md §9 calls for: only the entries the caller opted into (via
// DecodeOptions.ParseChunkTypes) are ever invoked, plus tRNS, which is
// always decoded.
var metadataDecoders = map[string]metadataDecodeFunc{
	"bKGD": decodeBKGD,
	"cHRM": decodeCHRM,
	"eXIf": decodeEXIf,
	"gAMA": decodeGAMA,
	"hIST": decodeHIST,
	"iCCP": decodeICCP,
	"iTXt": decodeITXt,
	"oFFs": decodeOFFs,
	"pCAL": decodePCAL,
	"pHYs": decodePHYs,
	"sBIT": decodeSBIT,
	"sCAL": decodeSCAL,
	"sPLT": decodeSPLT,
	"sRGB": decodeSRGB,
	"sTER": decodeSTER,
	"tEXt": decodeTEXt,
	"tIME": decodeTIME,
	"tRNS": decodeTRNS,
	"zTXt": decodeZTXt,
}

func findTrns(meta []Metadata) *TRNS {
	for _, m := range meta {
		if t, ok := m.(*TRNS); ok {
			return t
		}
	}
	return nil
}

// --- bKGD ---

type BKGD struct {
	PaletteIndex uint8
	Gray         uint16
	Red, Green, Blue uint16
}

func (*BKGD) ChunkType() string { return "bKGD" }

func decodeBKGD(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	if ctx.header == nil {
		return nil, newDecodeError(catChunkDataLengthShort, "bKGD: appears before IHDR", 0, ctx.snapshot())
	}
	r := newByteReader(data)
	b := &BKGD{}
	switch ctx.header.ColorType {
	case ColorIndexed:
		v, err := r.u8(0)
		if err != nil {
			return nil, wrapDecodeError(catChunkDataLengthShort, "bKGD: data too short", 0, ctx.snapshot(), err)
		}
		b.PaletteIndex = v
	case ColorGrayscale, ColorGrayscaleAlpha:
		v, err := r.u16be(0)
		if err != nil {
			return nil, wrapDecodeError(catChunkDataLengthShort, "bKGD: data too short", 0, ctx.snapshot(), err)
		}
		b.Gray = v
	case ColorTruecolor, ColorTruecolorAlpha:
		red, err1 := r.u16be(0)
		green, err2 := r.u16be(2)
		blue, err3 := r.u16be(4)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, newDecodeError(catChunkDataLengthShort, "bKGD: data too short", 0, ctx.snapshot())
		}
		b.Red, b.Green, b.Blue = red, green, blue
	}
	return b, nil
}

// --- cHRM ---

type CHRM struct {
	WhiteX, WhiteY float64
	RedX, RedY     float64
	GreenX, GreenY float64
	BlueX, BlueY   float64
}

func (*CHRM) ChunkType() string { return "cHRM" }

func decodeCHRM(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	r := newByteReader(data)
	vals := make([]float64, 8)
	for i := 0; i < 8; i++ {
		v, err := r.u32be(i * 4)
		if err != nil {
			return nil, wrapDecodeError(catChunkDataLengthShort, "cHRM: data too short", 0, ctx.snapshot(), err)
		}
		vals[i] = float64(v) / 100000
	}
	c := &CHRM{WhiteX: vals[0], WhiteY: vals[1], RedX: vals[2], RedY: vals[3], GreenX: vals[4], GreenY: vals[5], BlueX: vals[6], BlueY: vals[7]}
	if c.WhiteX > 1 || c.WhiteY > 1 || c.RedX > 1 || c.RedY > 1 || c.GreenX > 1 || c.GreenY > 1 || c.BlueX > 1 || c.BlueY > 1 {
		if err := ctx.warnOrFail("cHRM: chromaticity value greater than 1", 0); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// --- eXIf ---

type EXIF struct {
	Data []byte
}

func (*EXIF) ChunkType() string { return "eXIf" }

func decodeEXIf(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	return &EXIF{Data: data}, nil
}

// --- gAMA ---

type GAMA struct {
	Gamma float64
}

func (*GAMA) ChunkType() string { return "gAMA" }

func decodeGAMA(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	r := newByteReader(data)
	v, err := r.u32be(0)
	if err != nil {
		return nil, wrapDecodeError(catChunkDataLengthShort, "gAMA: data too short", 0, ctx.snapshot(), err)
	}
	if v == 0 {
		ctx.warn("gAMA: Gamma value of 0 is invalid", 0)
	}
	return &GAMA{Gamma: float64(v) / 100000}, nil
}

// --- hIST ---

type HIST struct {
	Frequencies []uint16
}

func (*HIST) ChunkType() string { return "hIST" }

func decodeHIST(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	if ctx.palette == nil {
		return nil, newDecodeError(catChunkDataLengthShort, "hIST: appears without PLTE", 0, ctx.snapshot())
	}
	if len(data) != ctx.palette.Size()*2 {
		return nil, newDecodeError(catChunkDataLengthShort,
			fmt.Sprintf("hIST: Expected %d bytes, got %d", ctx.palette.Size()*2, len(data)), 0, ctx.snapshot())
	}
	r := newByteReader(data)
	freqs := make([]uint16, ctx.palette.Size())
	for i := range freqs {
		v, _ := r.u16be(i * 2)
		freqs[i] = v
	}
	return &HIST{Frequencies: freqs}, nil
}

// --- iCCP ---

type ICCP struct {
	Name              string
	CompressionMethod uint8
	Profile           []byte // still deflate-compressed; this package does not interpret ICC profiles
}

func (*ICCP) ChunkType() string { return "iCCP" }

func decodeICCP(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	nul := indexByte(data, 0)
	if nul < 1 || nul > 79 || nul+1 >= len(data) {
		return nil, newDecodeError(catChunkDataLengthShort, "iCCP: Invalid name/separator", 0, ctx.snapshot())
	}
	return &ICCP{Name: string(data[:nul]), CompressionMethod: data[nul+1], Profile: data[nul+2:]}, nil
}

// --- iTXt ---

type ITXT struct {
	Keyword             string
	CompressionFlag     uint8
	CompressionMethod   uint8
	LanguageTag         string
	TranslatedKeyword   string
	Text                string
}

func (*ITXT) ChunkType() string { return "iTXt" }

func decodeITXt(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	if len(data) < 6 {
		return nil, newDecodeError(catChunkDataLengthShort, "iTXt: chunk shorter than 6 bytes", 0, ctx.snapshot())
	}
	i := indexByte(data, 0)
	if i < 0 {
		return nil, newDecodeError(catChunkDataLengthShort, "iTXt: missing keyword separator", 0, ctx.snapshot())
	}
	keyword := string(data[:i])
	rest := data[i+1:]
	if len(rest) < 2 {
		return nil, newDecodeError(catChunkDataLengthShort, "iTXt: truncated after keyword", 0, ctx.snapshot())
	}
	compFlag, compMethod := rest[0], rest[1]
	rest = rest[2:]

	j := indexByte(rest, 0)
	if j < 0 {
		return nil, newDecodeError(catChunkDataLengthShort, "iTXt: missing language tag separator", 0, ctx.snapshot())
	}
	langTag := string(rest[:j])
	rest = rest[j+1:]

	k := indexByte(rest, 0)
	if k < 0 {
		return nil, newDecodeError(catChunkDataLengthShort, "iTXt: missing translated keyword separator", 0, ctx.snapshot())
	}
	translated := string(rest[:k])
	textBytes := rest[k+1:]

	text := string(textBytes)
	if compFlag == 1 {
		inflated, err := inflateZlib([][]byte{textBytes})
		if err != nil {
			return nil, wrapDecodeError(catInflateError, "iTXt: Inflate error: "+err.Error(), 0, ctx.snapshot(), err)
		}
		text = string(inflated)
	}

	return &ITXT{
		Keyword:           keyword,
		CompressionFlag:   compFlag,
		CompressionMethod: compMethod,
		LanguageTag:       langTag,
		TranslatedKeyword: translated,
		Text:              text,
	}, nil
}

// --- oFFs ---

type OFFS struct {
	X, Y int32
	Unit uint8 // 0 pixel, 1 micrometer
}

func (*OFFS) ChunkType() string { return "oFFs" }

func decodeOFFs(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	if len(data) != 9 {
		return nil, newDecodeError(catChunkDataLengthShort, "oFFs: expected 9 bytes", 0, ctx.snapshot())
	}
	r := newByteReader(data)
	x, _ := r.i32be(0)
	y, _ := r.i32be(4)
	u, _ := r.u8(8)
	return &OFFS{X: x, Y: y, Unit: u}, nil
}

// --- pCAL ---

type PCAL struct {
	Name         string
	X0, X1       int32
	EquationType uint8
	Unit         string
	Params       []string
}

func (*PCAL) ChunkType() string { return "pCAL" }

func decodePCAL(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	nul := indexByte(data, 0)
	if nul < 0 {
		return nil, newDecodeError(catChunkDataLengthShort, "pCAL: missing name separator", 0, ctx.snapshot())
	}
	name := string(data[:nul])
	rest := data[nul+1:]
	if len(rest) < 10 {
		return nil, newDecodeError(catChunkDataLengthShort, "pCAL: truncated header", 0, ctx.snapshot())
	}
	r := newByteReader(rest)
	x0, _ := r.i32be(0)
	x1, _ := r.i32be(4)
	eqType, _ := r.u8(8)
	if eqType > 3 {
		return nil, newDecodeError(catChunkDataLengthShort, fmt.Sprintf("pCAL: Invalid equation type %d", eqType), 0, ctx.snapshot())
	}
	nParams, _ := r.u8(9)
	unitStart := 10
	unitNul := indexByte(rest[unitStart:], 0)
	if unitNul < 0 {
		return nil, newDecodeError(catChunkDataLengthShort, "pCAL: missing unit separator", 0, ctx.snapshot())
	}
	unit := string(rest[unitStart : unitStart+unitNul])
	paramBytes := rest[unitStart+unitNul+1:]
	params := splitNul(paramBytes)
	if len(params) != int(nParams) {
		ctx.warn(fmt.Sprintf("pCAL: Expected %d parameters, got %d", nParams, len(params)), 0)
	}
	return &PCAL{Name: name, X0: x0, X1: x1, EquationType: eqType, Unit: unit, Params: params}, nil
}

// --- pHYs ---

type PHYS struct {
	X, Y uint32
	Unit uint8 // 0 unknown, 1 meter
}

func (*PHYS) ChunkType() string { return "pHYs" }

func decodePHYs(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	if len(data) != 9 {
		return nil, newDecodeError(catChunkDataLengthShort, "pHYs: expected 9 bytes", 0, ctx.snapshot())
	}
	r := newByteReader(data)
	x, _ := r.u32be(0)
	y, _ := r.u32be(4)
	u, _ := r.u8(8)
	return &PHYS{X: x, Y: y, Unit: u}, nil
}

// --- sBIT ---

type SBIT struct {
	Value []uint8
}

func (*SBIT) ChunkType() string { return "sBIT" }

func decodeSBIT(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	if ctx.header == nil {
		return nil, newDecodeError(catChunkDataLengthShort, "sBIT: appears before IHDR", 0, ctx.snapshot())
	}
	want := map[ColorType]int{
		ColorGrayscale: 1, ColorTruecolor: 3, ColorIndexed: 3,
		ColorGrayscaleAlpha: 2, ColorTruecolorAlpha: 4,
	}[ctx.header.ColorType]
	if len(data) != want {
		return nil, newDecodeError(catChunkDataLengthShort,
			fmt.Sprintf("sBIT: Expected %d bytes, got %d", want, len(data)), 0, ctx.snapshot())
	}
	sampleDepth := ctx.header.BitDepth
	if ctx.header.ColorType == ColorIndexed {
		sampleDepth = 8
	}
	for _, v := range data {
		if v == 0 || v > sampleDepth {
			if err := ctx.warnOrFail(fmt.Sprintf("sBIT: Invalid value %d", v), 0); err != nil {
				return nil, err
			}
		}
	}
	return &SBIT{Value: append([]uint8(nil), data...)}, nil
}

// --- sCAL ---

type SCAL struct {
	Unit   uint8 // 0 meter, 1 radian
	Width  string
	Height string
}

func (*SCAL) ChunkType() string { return "sCAL" }

func decodeSCAL(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	if len(data) < 3 {
		return nil, newDecodeError(catChunkDataLengthShort, "sCAL: too short", 0, ctx.snapshot())
	}
	unit := data[0]
	rest := data[1:]
	nul := indexByte(rest, 0)
	if nul < 0 {
		return nil, newDecodeError(catChunkDataLengthShort, "sCAL: missing width separator", 0, ctx.snapshot())
	}
	width := string(rest[:nul])
	height := string(rest[nul+1:])
	if wv, err := strconv.ParseFloat(width, 64); err == nil && wv < 0 {
		ctx.warn("sCAL: negative width", 0)
	}
	if hv, err := strconv.ParseFloat(height, 64); err == nil && hv < 0 {
		ctx.warn("sCAL: negative height", 0)
	}
	return &SCAL{Unit: unit, Width: width, Height: height}, nil
}

// --- sPLT ---

type SPLTEntry struct {
	Red, Green, Blue, Alpha uint16
	Frequency               uint16
}

type SPLT struct {
	Name        string
	SampleDepth uint8
	Entries     []SPLTEntry
}

func (*SPLT) ChunkType() string { return "sPLT" }

func decodeSPLT(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	nul := indexByte(data, 0)
	if nul < 0 {
		return nil, newDecodeError(catChunkDataLengthShort, "sPLT: missing name separator", 0, ctx.snapshot())
	}
	name := string(data[:nul])
	rest := data[nul+1:]
	if len(rest) < 1 {
		return nil, newDecodeError(catChunkDataLengthShort, "sPLT: missing sample depth", 0, ctx.snapshot())
	}
	depth := rest[0]
	if depth != 8 && depth != 16 {
		return nil, newDecodeError(catChunkDataLengthShort, fmt.Sprintf("sPLT: Invalid sample depth %d", depth), 0, ctx.snapshot())
	}
	entryBytes := rest[1:]
	entrySize := 10
	if depth == 8 {
		entrySize = 6
	}
	if len(entryBytes)%entrySize != 0 {
		return nil, newDecodeError(catChunkDataLengthShort, "sPLT: entry data does not divide evenly", 0, ctx.snapshot())
	}
	n := len(entryBytes) / entrySize
	entries := make([]SPLTEntry, n)
	for i := 0; i < n; i++ {
		e := entryBytes[i*entrySize : (i+1)*entrySize]
		if depth == 8 {
			entries[i] = SPLTEntry{
				Red: uint16(e[0]), Green: uint16(e[1]), Blue: uint16(e[2]), Alpha: uint16(e[3]),
				Frequency: uint16(e[4])<<8 | uint16(e[5]),
			}
		} else {
			r := newByteReader(e)
			red, _ := r.u16be(0)
			green, _ := r.u16be(2)
			blue, _ := r.u16be(4)
			alpha, _ := r.u16be(6)
			freq, _ := r.u16be(8)
			entries[i] = SPLTEntry{Red: red, Green: green, Blue: blue, Alpha: alpha, Frequency: freq}
		}
	}
	return &SPLT{Name: name, SampleDepth: depth, Entries: entries}, nil
}

// --- sRGB ---

type SRGB struct {
	RenderingIntent uint8
}

func (*SRGB) ChunkType() string { return "sRGB" }

func decodeSRGB(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	if len(data) != 1 {
		return nil, newDecodeError(catChunkDataLengthShort, "sRGB: expected 1 byte", 0, ctx.snapshot())
	}
	if data[0] > 3 {
		if err := ctx.warnOrFail(fmt.Sprintf("sRGB: Invalid rendering intent %q", strconv.Itoa(int(data[0]))), 0); err != nil {
			return nil, err
		}
	}
	return &SRGB{RenderingIntent: data[0]}, nil
}

// --- sTER ---

type STER struct {
	Mode uint8 // 0 cross-fuse, 1 diverging-fuse
}

func (*STER) ChunkType() string { return "sTER" }

func decodeSTER(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	if len(data) != 1 {
		return nil, newDecodeError(catChunkDataLengthShort, "sTER: expected 1 byte", 0, ctx.snapshot())
	}
	if data[0] > 1 {
		return nil, newDecodeError(catChunkDataLengthShort, fmt.Sprintf("sTER: Invalid mode %d", data[0]), 0, ctx.snapshot())
	}
	if ctx.header != nil {
		padding := 15 - ((int(ctx.header.Width) - 1) % 16)
		if padding > 7 {
			ctx.warn(fmt.Sprintf("sTER: padding %d exceeds 7", padding), 0)
		}
	}
	return &STER{Mode: data[0]}, nil
}

// --- tEXt ---

type TEXT struct {
	Keyword string
	Text    string
}

func (*TEXT) ChunkType() string { return "tEXt" }

func decodeTEXt(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	if len(data) < 2 {
		return nil, newDecodeError(catChunkDataLengthShort, "tEXt: shorter than 2 bytes", 0, ctx.snapshot())
	}
	nul := indexByte(data, 0)
	if nul < 1 || nul > 79 {
		return nil, newDecodeError(catChunkDataLengthShort, "tEXt: invalid keyword length", 0, ctx.snapshot())
	}
	return &TEXT{Keyword: string(data[:nul]), Text: string(data[nul+1:])}, nil
}

// --- tIME ---

type TIME struct {
	Year                      uint16
	Month, Day                uint8
	Hour, Minute, Second      uint8
}

func (*TIME) ChunkType() string { return "tIME" }

func decodeTIME(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	if len(data) != 7 {
		return nil, newDecodeError(catChunkDataLengthShort, "tIME: expected 7 bytes", 0, ctx.snapshot())
	}
	r := newByteReader(data)
	year, _ := r.u16be(0)
	month, _ := r.u8(2)
	day, _ := r.u8(3)
	hour, _ := r.u8(4)
	minute, _ := r.u8(5)
	second, _ := r.u8(6)
	return &TIME{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: second}, nil
}

// --- tRNS ---

type TRNS struct {
	Alphas            []uint8 // indexed
	Gray              uint16  // grayscale
	Red, Green, Blue  uint16  // truecolor
}

func (*TRNS) ChunkType() string { return "tRNS" }

func decodeTRNS(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	if ctx.header == nil {
		return nil, newDecodeError(catChunkDataLengthShort, "tRNS: appears before IHDR", 0, ctx.snapshot())
	}
	t := &TRNS{}
	switch ctx.header.ColorType {
	case ColorIndexed:
		if ctx.palette != nil && len(data) > ctx.palette.Size() {
			return nil, newDecodeError(catChunkDataLengthShort, "tRNS: more entries than palette", 0, ctx.snapshot())
		}
		t.Alphas = append([]uint8(nil), data...)
	case ColorGrayscale:
		v, err := newByteReader(data).u16be(0)
		if err != nil {
			return nil, wrapDecodeError(catChunkDataLengthShort, "tRNS: data too short", 0, ctx.snapshot(), err)
		}
		t.Gray = v
	case ColorTruecolor:
		r := newByteReader(data)
		red, err1 := r.u16be(0)
		green, err2 := r.u16be(2)
		blue, err3 := r.u16be(4)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, newDecodeError(catChunkDataLengthShort, "tRNS: data too short", 0, ctx.snapshot())
		}
		t.Red, t.Green, t.Blue = red, green, blue
	}
	return t, nil
}

// --- zTXt ---

type ZTXT struct {
	Keyword           string
	CompressionMethod uint8
	Text              string
}

func (*ZTXT) ChunkType() string { return "zTXt" }

func decodeZTXt(data []byte, ctx *decodeContext) (Metadata, *DecodeError) {
	if len(data) < 2 {
		return nil, newDecodeError(catChunkDataLengthShort, "zTXt: shorter than 2 bytes", 0, ctx.snapshot())
	}
	nul := indexByte(data, 0)
	if nul < 1 || nul > 79 || nul+1 >= len(data) {
		return nil, newDecodeError(catChunkDataLengthShort, "zTXt: invalid keyword/separator", 0, ctx.snapshot())
	}
	compMethod := data[nul+1]
	inflated, err := inflateZlib([][]byte{data[nul+2:]})
	if err != nil {
		return nil, wrapDecodeError(catInflateError, "zTXt: Inflate error: "+err.Error(), 0, ctx.snapshot(), err)
	}
	return &ZTXT{Keyword: string(data[:nul]), CompressionMethod: compMethod, Text: string(inflated)}, nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func splitNul(b []byte) []string {
	s := string(b)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\x00")
}
