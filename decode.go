package png

import (
	"fmt"

	"github.com/pkg/errors"
)

// decodeContext is the mutable aggregate threaded through every per-chunk
// decoder, per the design note in spec.md §9: rather than a global, it is
// created at Decode's entry, mutated exclusively by the decode driver (and
// the decoders it calls into) on a single goroutine, and either returned
// embedded in the result or attached to a *DecodeError snapshot on failure.
type decodeContext struct {
	opts      DecodeOptions
	header    *Header
	palette   *Palette
	metadata  []Metadata
	rawChunks []RawChunk
	warnings  []Warning
	info      []string
	seen      map[string]bool
}

func newDecodeContext(opts DecodeOptions, rawChunks []RawChunk) *decodeContext {
	return &decodeContext{
		opts:      opts,
		rawChunks: rawChunks,
		seen:      make(map[string]bool),
	}
}

func (ctx *decodeContext) snapshot() Snapshot {
	return Snapshot{
		Header:    ctx.header,
		Palette:   ctx.palette,
		Metadata:  ctx.metadata,
		RawChunks: ctx.rawChunks,
		Warnings:  ctx.warnings,
		Info:      ctx.info,
	}
}

// warnOrFail records msg as a warning, or returns it as a fatal
// *DecodeError immediately if strict mode is on. Category defaults to a
// generic ordering/value category; callers needing a specific category
// should construct the *DecodeError themselves instead.
func (ctx *decodeContext) warnOrFail(msg string, offset int64) *DecodeError {
	if ctx.opts.StrictMode {
		return newDecodeError(catInvalidIhdrValue, msg, offset, ctx.snapshot())
	}
	ctx.warn(msg, offset)
	return nil
}

func (ctx *decodeContext) warn(msg string, offset int64) {
	ctx.warnings = append(ctx.warnings, Warning{Message: msg, Offset: offset})
	if ctx.opts.Logger != nil {
		ctx.opts.Logger.Warn().Int64("offset", offset).Msg(msg)
	}
}

func (ctx *decodeContext) note(msg string) {
	ctx.info = append(ctx.info, msg)
	if ctx.opts.Logger != nil {
		ctx.opts.Logger.Debug().Msg(msg)
	}
}

// Decode parses a complete PNG datastream. On any fatal failure the
// returned error is a *DecodeError carrying a Snapshot of whatever had been
// decoded so far.
func Decode(data []byte, opts DecodeOptions) (*DecodeResult, error) {
	if err := checkSignature(data); err != nil {
		return nil, err
	}

	r := newByteReader(data)
	rawChunks, splitErr := splitChunks(r)
	if splitErr != nil {
		return nil, splitErr
	}

	ctx := newDecodeContext(opts, rawChunks)

	if rawChunks[len(rawChunks)-1].Type != "IEND" {
		if err := ctx.warnOrFail("IEND must be the last chunk", rawChunks[len(rawChunks)-1].Offset); err != nil {
			return nil, err
		}
	}
	if err := checkIdatConsecutive(rawChunks); err != nil {
		err.Snapshot = ctx.snapshot()
		return nil, err
	}

	for _, c := range rawChunks {
		if !c.CRCOK {
			msg := crcMismatchMessage(c)
			if err := ctx.warnOrFail(msg, c.Offset); err != nil {
				err.Category = catChunkCrcMismatch
				return nil, err
			}
		}
	}

	var packed []byte
	idatDone := false

	for i := range rawChunks {
		c := rawChunks[i]
		switch c.Type {
		case "IHDR":
			h, err := decodeIHDR(c.Data, ctx)
			if err != nil {
				return nil, err
			}
			ctx.header = h
		case "PLTE":
			if ctx.header == nil {
				return nil, newDecodeError(catFirstChunkNotIhdr, "PLTE: appears before IHDR", c.Offset, ctx.snapshot())
			}
			if ctx.header.ColorType == ColorGrayscale || ctx.header.ColorType == ColorGrayscaleAlpha {
				if err := ctx.warnOrFail("PLTE: Forbidden for this color type", c.Offset); err != nil {
					return nil, err
				}
			}
			p, perr := newPalette(c.Data)
			if perr != nil {
				perr.Snapshot = ctx.snapshot()
				return nil, perr
			}
			if p.Size() > 1<<int(ctx.header.BitDepth) {
				ctx.warn(fmt.Sprintf("PLTE: %d entries exceeds 2^%d", p.Size(), ctx.header.BitDepth), c.Offset)
			}
			ctx.palette = p
		case "IDAT":
			if ctx.header == nil {
				return nil, newDecodeError(catFirstChunkNotIhdr, "IDAT: appears before IHDR", c.Offset, ctx.snapshot())
			}
			if ctx.header.ColorType == ColorIndexed && ctx.palette == nil {
				return nil, newDecodeError(catMissingPalette,
					"IDAT: Cannot decode indexed color type without a palette", c.Offset, ctx.snapshot())
			}
			if !idatDone {
				var allIdat [][]byte
				for _, c2 := range rawChunks {
					if c2.Type == "IDAT" {
						allIdat = append(allIdat, c2.Data)
					}
				}
				out, err := inflateIDAT(allIdat)
				if err != nil {
					err.Snapshot = ctx.snapshot()
					return nil, err
				}
				p, derr := defilterAll(ctx, out)
				if derr != nil {
					derr.Snapshot = ctx.snapshot()
					return nil, derr
				}
				packed = p
				idatDone = true
			}
			ctx.seen["IDAT"] = true
			continue
		case "IEND":
		case "tRNS":
			if ctx.header != nil && ctx.header.ColorType == ColorIndexed && !ctx.seen["PLTE"] {
				return nil, newDecodeError(catOrderingFollowsViolation, "tRNS: Must follow PLTE", c.Offset, ctx.snapshot())
			}
			if ctx.header != nil && (ctx.header.ColorType == ColorGrayscaleAlpha || ctx.header.ColorType == ColorTruecolorAlpha) {
				if err := ctx.warnOrFail("tRNS: Forbidden for this color type", c.Offset); err != nil {
					return nil, err
				}
			}
			if err := ctx.handleAncillary(c); err != nil {
				return nil, err
			}
		default:
			if err := ctx.handleAncillary(c); err != nil {
				return nil, err
			}
		}
		if err := checkOrder(ctx, c.Type, c.Offset); err != nil {
			return nil, err
		}
		ctx.seen[c.Type] = true
	}

	if ctx.header == nil {
		return nil, newDecodeError(catFirstChunkNotIhdr, "Missing IHDR chunk", 0, ctx.snapshot())
	}
	if ctx.header.ColorType == ColorIndexed && ctx.palette == nil {
		return nil, newDecodeError(catMissingPalette, "IDAT: Cannot decode indexed color type without a palette", 0, ctx.snapshot())
	}

	img, perr := packToRGBA(ctx, packed)
	if perr != nil {
		perr.Snapshot = ctx.snapshot()
		return nil, perr
	}

	if t := findTrns(ctx.metadata); t != nil && (ctx.header.ColorType == ColorGrayscale || ctx.header.ColorType == ColorTruecolor) {
		applyTransparency(img, ctx.header, t)
	}

	return &DecodeResult{
		Image:     img,
		Header:    ctx.header,
		Palette:   ctx.palette,
		Metadata:  ctx.metadata,
		RawChunks: rawChunks,
		Warnings:  ctx.warnings,
		Info:      ctx.info,
	}, nil
}

func checkIdatConsecutive(chunks []RawChunk) *DecodeError {
	inRun := false
	finished := false
	for _, c := range chunks {
		if c.Type == "IDAT" {
			if finished {
				return newDecodeError(catChunkDataLengthShort,
					"IDAT: chunks must be consecutive", c.Offset, Snapshot{})
			}
			inRun = true
			continue
		}
		if inRun {
			inRun = false
			finished = true
		}
	}
	return nil
}

// handleAncillary dispatches to a per-chunk decoder if the caller opted
// into this type (or it is always-decoded), records an info entry for
// wholly unrecognized types, skips recognized-but-unrequested types without
// an info entry, and fails fast on an unrecognized critical chunk.
func (ctx *decodeContext) handleAncillary(c RawChunk) *DecodeError {
	if isCritical(c.Type) {
		return newDecodeError(catUnrecognizedCriticalChunk,
			fmt.Sprintf("Unrecognized critical chunk type %q", c.Type), c.Offset, ctx.snapshot())
	}
	dec, known := metadataDecoders[c.Type]
	if !known {
		ctx.note(fmt.Sprintf("Unrecognized chunk type %q", c.Type))
		return nil
	}
	if !ctx.opts.wantsChunk(c.Type) {
		return nil
	}
	m, err := dec(c.Data, ctx)
	if err != nil {
		err.Snapshot = ctx.snapshot()
		return err
	}
	if m != nil {
		ctx.metadata = append(ctx.metadata, m)
	}
	return nil
}

func inflateIDAT(parts [][]byte) ([]byte, *DecodeError) {
	out, err := inflateZlib(parts)
	if err != nil {
		return nil, wrapDecodeError(catInflateError, fmt.Sprintf("IDAT: Inflate error: %s", err), 0, Snapshot{}, errors.WithStack(err))
	}
	if len(out) == 0 {
		return nil, newDecodeError(catInflateError, "IDAT: Failed to decompress data chunks", 0, Snapshot{})
	}
	return out, nil
}
