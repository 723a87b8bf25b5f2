package png

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zlib"
)

// Encode serializes img into a complete PNG datastream. With the zero
// EncodeOptions, the color type, bit depth, and palette/tRNS strategy are
// chosen by analyzeImage for the smallest lossless representation; setting
// BitDepth forces both BitDepth and ColorType instead.
func Encode(img *Image, opts EncodeOptions) (*EncodeResult, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, newEncodeError("image has no pixels to encode")
	}

	analysis, aerr := analyzeImage(img)
	if aerr != nil {
		return nil, aerr
	}

	header := &Header{
		Width:     uint32(img.Width),
		Height:    uint32(img.Height),
		BitDepth:  analysis.bitDepth,
		ColorType: analysis.colorType,
	}

	var warnings []Warning
	if opts.BitDepth != 0 {
		if !bitDepthAllowed(opts.ColorType, opts.BitDepth) {
			return nil, newEncodeError("color type %d does not support bit depth %d", opts.ColorType, opts.BitDepth)
		}
		if opts.ColorType != analysis.colorType {
			if opts.StrictMode {
				return nil, newEncodeError(
					"requested color type %d would not losslessly represent this image (analysis picked %d)",
					opts.ColorType, analysis.colorType)
			}
			warnings = append(warnings, Warning{
				Message: fmt.Sprintf("encoding as color type %d instead of the analyzer's choice of %d may lose information",
					opts.ColorType, analysis.colorType),
			})
		}
		header.ColorType = opts.ColorType
		header.BitDepth = opts.BitDepth
	}

	if header.ColorType == ColorIndexed && analysis.palette == nil {
		return nil, newEncodeError("cannot encode as indexed color: image has more than 256 distinct colors, or is not 8 bits per channel")
	}
	if header.ColorType == ColorIndexed {
		entries := len(analysis.palette) / 3
		if entries > 1<<header.BitDepth {
			return nil, newEncodeError("bit depth %d cannot address %d palette entries", header.BitDepth, entries)
		}
	}

	channels := header.ColorType.channels()
	bpp := bytesPerPixel(channels, int(header.BitDepth))
	bpl := bytesPerLine(channels, int(header.BitDepth), img.Width)

	filtered := make([]byte, 0, (bpl+1)*img.Height)
	prior := make([]byte, bpl)
	var dst [numFilters][]byte
	for f := range dst {
		dst[f] = make([]byte, bpl+1)
	}
	for y := 0; y < img.Height; y++ {
		cur := packRow(img, header, analysis, y, bpl)
		filterRow(cur, prior, bpp, dst)
		filtered = append(filtered, chooseFilter(dst)...)
		prior = cur
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(filtered); err != nil {
		return nil, newEncodeError("deflate: %s", err)
	}
	if err := zw.Close(); err != nil {
		return nil, newEncodeError("deflate: %s", err)
	}

	var preplte, postplte []RawChunk
	for _, c := range opts.AncillaryChunks {
		if mustPrecedePLTE(c.Type) {
			preplte = append(preplte, c)
		} else {
			postplte = append(postplte, c)
		}
	}

	var out bytes.Buffer
	out.Write(signature[:])
	writeChunk(&out, "IHDR", encodeIHDR(header))

	for _, c := range preplte {
		writeChunk(&out, c.Type, c.Data)
	}

	if header.ColorType == ColorIndexed {
		writeChunk(&out, "PLTE", analysis.palette)
		if analysis.trns != nil {
			writeChunk(&out, "tRNS", analysis.trns)
		}
	} else if analysis.colorKey != nil {
		maxOut := uint32(maxForDepth(header.BitDepth))
		key := *analysis.colorKey
		scaled := [3]uint16{
			scaleSample(key[0], int(img.BitDepth), maxOut),
			scaleSample(key[1], int(img.BitDepth), maxOut),
			scaleSample(key[2], int(img.BitDepth), maxOut),
		}
		writeChunk(&out, "tRNS", encodeColorKeyTRNS(header.ColorType, scaled))
	}

	for _, c := range postplte {
		writeChunk(&out, c.Type, c.Data)
	}

	chunkSize := opts.IDATChunkSize
	data := compressed.Bytes()
	if chunkSize <= 0 {
		chunkSize = len(data)
		if chunkSize == 0 {
			chunkSize = 1
		}
	}
	for len(data) > 0 {
		n := chunkSize
		if n > len(data) {
			n = len(data)
		}
		writeChunk(&out, "IDAT", data[:n])
		data = data[n:]
	}
	writeChunk(&out, "IEND", nil)

	if opts.Logger != nil {
		opts.Logger.Debug().Int("bytes", out.Len()).Uint8("colorType", uint8(header.ColorType)).Msg("encoded png")
	}

	return &EncodeResult{Data: out.Bytes(), Warnings: warnings}, nil
}

func encodeIHDR(h *Header) []byte {
	buf := make([]byte, 13)
	binary.BigEndian.PutUint32(buf[0:4], h.Width)
	binary.BigEndian.PutUint32(buf[4:8], h.Height)
	buf[8] = h.BitDepth
	buf[9] = uint8(h.ColorType)
	buf[10] = h.CompressionMethod
	buf[11] = h.FilterMethod
	buf[12] = h.InterlaceMethod
	return buf
}

// encodeColorKeyTRNS renders a single-color tRNS key for the grayscale or
// truecolor cases, at the chunk's native sample width (always 2 bytes per
// channel, per spec.md §6.2, regardless of IHDR bit depth).
func encodeColorKeyTRNS(ct ColorType, key [3]uint16) []byte {
	if ct == ColorGrayscale {
		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, key[0])
		return buf
	}
	buf := make([]byte, 6)
	binary.BigEndian.PutUint16(buf[0:2], key[0])
	binary.BigEndian.PutUint16(buf[2:4], key[1])
	binary.BigEndian.PutUint16(buf[4:6], key[2])
	return buf
}

func writeChunk(w *bytes.Buffer, typ string, data []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	w.Write(lenBuf[:])
	w.WriteString(typ)
	w.Write(data)

	var tb [4]byte
	copy(tb[:], typ)
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crcChunk(tb, data))
	w.Write(crcBuf[:])
}

// packRow builds one packed (pre-filter) scanline of header.ColorType /
// header.BitDepth samples from img's RGBA pixels.
func packRow(img *Image, header *Header, analysis *imageAnalysis, y, bpl int) []byte {
	row := make([]byte, bpl)
	channels := header.ColorType.channels()
	depth := int(header.BitDepth)
	maxOut := maxForDepth(header.BitDepth)

	for x := 0; x < img.Width; x++ {
		switch header.ColorType {
		case ColorIndexed:
			px := img.At8(x, y)
			key := [4]byte{px[0], px[1], px[2], px[3]}
			setSample(row, x, 0, channels, depth, uint16(analysis.colorIndex[key]))
		case ColorGrayscale:
			v := convertSample(img, x, y, 0, maxOut)
			setSample(row, x, 0, channels, depth, v)
		case ColorGrayscaleAlpha:
			v := convertSample(img, x, y, 0, maxOut)
			a := convertSample(img, x, y, 3, maxOut)
			setSample(row, x, 0, channels, depth, v)
			setSample(row, x, 1, channels, depth, a)
		case ColorTruecolor:
			r := convertSample(img, x, y, 0, maxOut)
			g := convertSample(img, x, y, 1, maxOut)
			b := convertSample(img, x, y, 2, maxOut)
			setSample(row, x, 0, channels, depth, r)
			setSample(row, x, 1, channels, depth, g)
			setSample(row, x, 2, channels, depth, b)
		case ColorTruecolorAlpha:
			r := convertSample(img, x, y, 0, maxOut)
			g := convertSample(img, x, y, 1, maxOut)
			b := convertSample(img, x, y, 2, maxOut)
			a := convertSample(img, x, y, 3, maxOut)
			setSample(row, x, 0, channels, depth, r)
			setSample(row, x, 1, channels, depth, g)
			setSample(row, x, 2, channels, depth, b)
			setSample(row, x, 3, channels, depth, a)
		}
	}
	return row
}

func convertSample(img *Image, x, y, c int, maxOut uint16) uint16 {
	var v uint16
	if img.SampleBytes() == 2 {
		px := img.At16(x, y)
		v = uint16(px[c*2])<<8 | uint16(px[c*2+1])
	} else {
		px := img.At8(x, y)
		v = uint16(px[c])
	}
	return scaleSample(v, int(img.BitDepth), uint32(maxOut))
}
