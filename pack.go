package png

import "fmt"

// packToRGBA expands a packed (post-defilter, post-deinterlace) buffer into
// an RGBA Image at 8 or 16 bits per channel, per the table in spec.md
// §4.7.4. DecodeOptions.Force32 forces 8-bit output even for a 16-bit
// source.
func packToRGBA(ctx *decodeContext, packed []byte) (*Image, *DecodeError) {
	h := ctx.header
	width, height := int(h.Width), int(h.Height)
	channels := h.ColorType.channels()
	bpl := bytesPerLine(channels, int(h.BitDepth), width)

	outDepth := uint8(8)
	if h.BitDepth == 16 && !ctx.opts.Force32 {
		outDepth = 16
	}
	img := NewImage(width, height, outDepth)
	sb := img.SampleBytes()

	for y := 0; y < height; y++ {
		row := packed[y*bpl : y*bpl+bpl]
		for x := 0; x < width; x++ {
			var r, g, b, a uint16
			switch h.ColorType {
			case ColorGrayscale:
				gray := expandChannel(getSample(row, x, 0, 1, int(h.BitDepth)), int(h.BitDepth), int(outDepth))
				r, g, b = gray, gray, gray
				a = maxForDepth(outDepth)
			case ColorGrayscaleAlpha:
				gray := expandChannel(getSample(row, x, 0, 2, int(h.BitDepth)), int(h.BitDepth), int(outDepth))
				alpha := expandChannel(getSample(row, x, 1, 2, int(h.BitDepth)), int(h.BitDepth), int(outDepth))
				r, g, b, a = gray, gray, gray, alpha
			case ColorTruecolor:
				r = expandChannel(getSample(row, x, 0, 3, int(h.BitDepth)), int(h.BitDepth), int(outDepth))
				g = expandChannel(getSample(row, x, 1, 3, int(h.BitDepth)), int(h.BitDepth), int(outDepth))
				b = expandChannel(getSample(row, x, 2, 3, int(h.BitDepth)), int(h.BitDepth), int(outDepth))
				a = maxForDepth(outDepth)
			case ColorTruecolorAlpha:
				r = expandChannel(getSample(row, x, 0, 4, int(h.BitDepth)), int(h.BitDepth), int(outDepth))
				g = expandChannel(getSample(row, x, 1, 4, int(h.BitDepth)), int(h.BitDepth), int(outDepth))
				b = expandChannel(getSample(row, x, 2, 4, int(h.BitDepth)), int(h.BitDepth), int(outDepth))
				a = expandChannel(getSample(row, x, 3, 4, int(h.BitDepth)), int(h.BitDepth), int(outDepth))
			case ColorIndexed:
				idx := int(getSample(row, x, 0, 1, int(h.BitDepth)))
				rgb, err := ctx.palette.GetRgb(idx)
				if err != nil {
					return nil, newDecodeError(catOutOfRangePaletteIndex,
						fmt.Sprintf("IDAT: %s at (%d, %d)", err, x, y), 0, Snapshot{})
				}
				alpha := byte(255)
				if tr := findTrns(ctx.metadata); tr != nil && idx < len(tr.Alphas) {
					alpha = tr.Alphas[idx]
				}
				r, g, b, a = uint16(rgb[0]), uint16(rgb[1]), uint16(rgb[2]), uint16(alpha)
			default:
				return nil, newDecodeError(catUnsupportedColorTypeAndDepth, "IDAT: unsupported color type", 0, Snapshot{})
			}

			if sb == 2 {
				px := img.At16(x, y)
				px[0], px[1] = byte(r>>8), byte(r)
				px[2], px[3] = byte(g>>8), byte(g)
				px[4], px[5] = byte(b>>8), byte(b)
				px[6], px[7] = byte(a>>8), byte(a)
			} else {
				px := img.At8(x, y)
				px[0], px[1], px[2], px[3] = byte(r), byte(g), byte(b), byte(a)
			}
		}
	}
	return img, nil
}

func expandChannel(raw uint16, srcDepth, outDepth int) uint16 {
	if outDepth == 16 {
		return raw // srcDepth is always 16 here; image.go/pack.go never widen
	}
	if srcDepth == 16 {
		return raw >> 8
	}
	return scaleSample(raw, srcDepth, 255)
}

// maxForDepth returns the largest sample value representable at depth bits,
// e.g. 15 for depth 4, 255 for depth 8, 65535 for depth 16.
func maxForDepth(depth uint8) uint16 {
	if depth == 16 {
		return 65535
	}
	return uint16(1<<depth) - 1
}

// applyTransparency implements spec.md §4.7.5: for grayscale/truecolor
// images carrying a tRNS chunk, every pixel whose color exactly matches the
// (depth-scaled) tRNS value gets alpha 0.
func applyTransparency(img *Image, h *Header, t *TRNS) {
	maxOut := uint32(maxForDepth(img.BitDepth))
	maxIn := uint32(1<<h.BitDepth) - 1
	scale := func(v uint16) uint16 {
		return uint16(uint32(v) * maxOut / maxIn)
	}

	switch h.ColorType {
	case ColorGrayscale:
		target := scale(t.Gray)
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				setTransparentIfMatch(img, x, y, [4]uint16{target, target, target, 0})
			}
		}
	case ColorTruecolor:
		target := [3]uint16{scale(t.Red), scale(t.Green), scale(t.Blue)}
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				setTransparentIfMatch(img, x, y, [4]uint16{target[0], target[1], target[2], 0})
			}
		}
	}
}

func setTransparentIfMatch(img *Image, x, y int, target [4]uint16) {
	if img.SampleBytes() == 2 {
		px := img.At16(x, y)
		r := uint16(px[0])<<8 | uint16(px[1])
		g := uint16(px[2])<<8 | uint16(px[3])
		b := uint16(px[4])<<8 | uint16(px[5])
		if r == target[0] && g == target[1] && b == target[2] {
			px[6], px[7] = 0, 0
		}
		return
	}
	px := img.At8(x, y)
	if uint16(px[0]) == target[0] && uint16(px[1]) == target[1] && uint16(px[2]) == target[2] {
		px[3] = 0
	}
}
