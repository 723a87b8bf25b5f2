package png

// imageAnalysis is the result of scanning an Image's pixels to pick the most
// compact lossless encoding, per spec.md §4.8 steps 1-3: whether the image
// fits an indexed palette, whether it needs an alpha channel at all, and
// whether a single-color tRNS key can stand in for a whole alpha channel.
type imageAnalysis struct {
	colorType ColorType
	bitDepth  uint8

	// Indexed only.
	palette    []byte // RGB triples, in first-seen order
	trns       []byte // per-palette-entry alpha; nil if every entry is opaque
	colorIndex map[[4]byte]int

	// Grayscale/Truecolor only: a single fully-transparent color, encoded
	// as a tRNS color key instead of an alpha channel.
	colorKey *[3]uint16
}

// analyzeImage scans every pixel once, tracking in parallel: whether R=G=B
// everywhere (grayscale-eligible), the set of distinct (R,G,B,A) combinations
// up to the 256-entry palette limit, and whether transparency is a single
// binary (opaque/fully-transparent) color-key rather than genuine
// per-pixel alpha.
func analyzeImage(img *Image) (*imageAnalysis, *EncodeError) {
	width, height := img.Width, img.Height
	sw := img.SampleBytes()
	maxVal := maxForDepth(img.BitDepth)

	isGray := true
	hasAlpha := false
	binaryAlpha := true

	trackPalette := sw == 1
	exceeded := false
	colorIndex := map[[4]byte]int{}
	var paletteKeys [][4]byte

	transparentRGB := map[[3]uint16]struct{}{}
	opaqueRGB := map[[3]uint16]struct{}{}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g, b, a uint16
			if sw == 2 {
				px := img.At16(x, y)
				r = uint16(px[0])<<8 | uint16(px[1])
				g = uint16(px[2])<<8 | uint16(px[3])
				b = uint16(px[4])<<8 | uint16(px[5])
				a = uint16(px[6])<<8 | uint16(px[7])
			} else {
				px := img.At8(x, y)
				r, g, b, a = uint16(px[0]), uint16(px[1]), uint16(px[2]), uint16(px[3])
			}

			if r != g || g != b {
				isGray = false
			}
			if a != maxVal {
				hasAlpha = true
			}
			if a != 0 && a != maxVal {
				binaryAlpha = false
			}

			if trackPalette && !exceeded {
				key := [4]byte{byte(r), byte(g), byte(b), byte(a)}
				if _, ok := colorIndex[key]; !ok {
					if len(paletteKeys) >= 256 {
						exceeded = true
					} else {
						colorIndex[key] = len(paletteKeys)
						paletteKeys = append(paletteKeys, key)
					}
				}
			}

			if a == 0 {
				transparentRGB[[3]uint16{r, g, b}] = struct{}{}
			} else if a == maxVal {
				opaqueRGB[[3]uint16{r, g, b}] = struct{}{}
			}
		}
	}

	a := &imageAnalysis{}

	if trackPalette && !exceeded {
		a.colorType = ColorIndexed
		a.bitDepth = bitsForCount(len(paletteKeys))
		a.palette = make([]byte, len(paletteKeys)*3)
		a.trns = make([]byte, len(paletteKeys))
		anyAlpha := false
		for i, k := range paletteKeys {
			a.palette[i*3], a.palette[i*3+1], a.palette[i*3+2] = k[0], k[1], k[2]
			a.trns[i] = k[3]
			if k[3] != 255 {
				anyAlpha = true
			}
		}
		if !anyAlpha {
			a.trns = nil
		}
		a.colorIndex = colorIndex
		return a, nil
	}

	a.bitDepth = img.BitDepth

	colorKeyFeasible := false
	var keyColor [3]uint16
	if hasAlpha && binaryAlpha && len(transparentRGB) == 1 {
		for k := range transparentRGB {
			keyColor = k
		}
		if _, clash := opaqueRGB[keyColor]; !clash {
			colorKeyFeasible = true
		}
	}

	switch {
	case !hasAlpha:
		if isGray {
			a.colorType = ColorGrayscale
		} else {
			a.colorType = ColorTruecolor
		}
	case colorKeyFeasible:
		if isGray {
			a.colorType = ColorGrayscale
		} else {
			a.colorType = ColorTruecolor
		}
		ck := keyColor
		a.colorKey = &ck
	default:
		if isGray {
			a.colorType = ColorGrayscaleAlpha
		} else {
			a.colorType = ColorTruecolorAlpha
		}
	}
	return a, nil
}

// bitsForCount returns the smallest indexed bit depth whose 2^depth range
// covers n palette entries.
func bitsForCount(n int) uint8 {
	switch {
	case n <= 2:
		return 1
	case n <= 4:
		return 2
	case n <= 16:
		return 4
	default:
		return 8
	}
}
