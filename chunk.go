package png

import "fmt"

// RawChunk is a located, typed record produced by the chunk splitter. It
// does not own a copy of the chunk's data: Data borrows from the original
// datastream, the same way the teacher's chunk.data slices into the reader
// buffer it was handed.
type RawChunk struct {
	Offset     int64 // offset of the chunk's length field
	Type       string
	Data       []byte
	CRCOK      bool
	ActualCRC  uint32
	ExpectCRC  uint32
	IsAncillary bool
	IsPrivate   bool
	IsSafeToCopy bool
}

func classifyType(t string) (ancillary, private, safeToCopy bool) {
	b := []byte(t)
	ancillary = b[0]&0x20 != 0
	private = b[1]&0x20 != 0
	safeToCopy = b[3]&0x20 != 0
	return
}

func isCritical(t string) bool {
	anc, _, _ := classifyType(t)
	return !anc
}

// splitChunks walks the datastream starting at offset 8 (immediately after
// the signature) and returns every chunk record found, in order. It always
// returns whatever it managed to split even when it ultimately returns a
// fatal error, since the decode driver needs that partial list for the
// error snapshot.
func splitChunks(r *byteReader) ([]RawChunk, *DecodeError) {
	var chunks []RawChunk
	offset := 8
	for offset < r.len() {
		start := offset
		length, err := r.u32be(offset)
		if err != nil {
			return chunks, newDecodeError(catChunkDataLengthShort,
				"Unexpected end of file while reading chunk length", int64(start), Snapshot{RawChunks: chunks})
		}
		typeBytes, err := r.slice(offset+4, offset+8)
		if err != nil {
			return chunks, newDecodeError(catEofWhileReading,
				"Unexpected end of file while reading chunk type", int64(start), Snapshot{RawChunks: chunks})
		}
		typ := string(typeBytes)

		dataStart := offset + 8
		dataEnd := dataStart + int(length)
		data, err := r.slice(dataStart, dataEnd)
		if err != nil {
			return chunks, newDecodeError(catChunkDataLengthShort,
				fmt.Sprintf("%s: Chunk data length %d runs past end of file", typ, length), int64(start), Snapshot{RawChunks: chunks})
		}
		expectCRC, err := r.u32be(dataEnd)
		if err != nil {
			return chunks, newDecodeError(catEofWhileReading,
				fmt.Sprintf("%s: Unexpected end of file while reading CRC", typ), int64(start), Snapshot{RawChunks: chunks})
		}

		actualCRC := crcChunk([4]byte(typeBytes), data)
		ancillary, private, safe := classifyType(typ)
		chunks = append(chunks, RawChunk{
			Offset:       int64(start),
			Type:         typ,
			Data:         data,
			CRCOK:        actualCRC == expectCRC,
			ActualCRC:    actualCRC,
			ExpectCRC:    expectCRC,
			IsAncillary:  ancillary,
			IsPrivate:    private,
			IsSafeToCopy: safe,
		})

		offset = dataEnd + 4
	}

	if len(chunks) == 0 || chunks[0].Type != "IHDR" {
		return chunks, newDecodeError(catFirstChunkNotIhdr,
			"First chunk must be IHDR", 8, Snapshot{RawChunks: chunks})
	}

	hasIDAT := false
	for _, c := range chunks {
		if c.Type == "IDAT" {
			hasIDAT = true
			break
		}
	}
	if !hasIDAT {
		return chunks, newDecodeError(catNoIdat,
			"Missing IDAT chunk", 0, Snapshot{RawChunks: chunks})
	}

	return chunks, nil
}

func crcMismatchMessage(c RawChunk) string {
	return fmt.Sprintf("CRC for chunk %q at offset 0x%x doesn't match (0x%x !== 0x%x)",
		c.Type, c.Offset, c.ActualCRC, c.ExpectCRC)
}
