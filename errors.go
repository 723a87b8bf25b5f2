package png

import (
	"fmt"

	"github.com/pkg/errors"
)

// Warning is a recoverable irregularity found during decode. In non-strict
// mode warnings accumulate on DecodeResult.Warnings; in strict mode a
// warning is promoted to a fatal *DecodeError at the point it would have
// been recorded, except for the value warnings DecodeOptions.StrictMode
// lists as not escalated.
type Warning struct {
	Message string
	Offset  int64
}

func (w Warning) String() string {
	return fmt.Sprintf("%s (offset 0x%x)", w.Message, w.Offset)
}

// Snapshot is whatever a decode had accumulated at the moment it failed.
// It is embedded in every *DecodeError so callers can inspect partial
// progress instead of losing it to the error return.
type Snapshot struct {
	Header    *Header
	Palette   *Palette
	Metadata  []Metadata
	RawChunks []RawChunk
	Warnings  []Warning
	Info      []string
}

// DecodeError is returned for any fatal decode failure. Message is a
// human-readable, chunk-type-prefixed description; Offset is the byte
// offset at which the failure was detected (0 when not chunk-relative).
type DecodeError struct {
	Category string
	Message  string
	Offset   int64
	Snapshot Snapshot
	cause    error
}

func (e *DecodeError) Error() string {
	return e.Message
}

func (e *DecodeError) Unwrap() error {
	return e.cause
}

func newDecodeError(category, message string, offset int64, snap Snapshot) *DecodeError {
	return &DecodeError{Category: category, Message: message, Offset: offset, Snapshot: snap}
}

func wrapDecodeError(category, message string, offset int64, snap Snapshot, cause error) *DecodeError {
	return &DecodeError{Category: category, Message: message, Offset: offset, Snapshot: snap, cause: errors.WithStack(cause)}
}

// EncodeError is returned for fatal encode failures, including the strict
// mode refusal of a caller-requested color type that differs from the
// analyzer's choice.
type EncodeError struct {
	Message string
	cause   error
}

func (e *EncodeError) Error() string {
	return e.Message
}

func (e *EncodeError) Unwrap() error {
	return e.cause
}

func newEncodeError(format string, args ...any) *EncodeError {
	return &EncodeError{Message: fmt.Sprintf(format, args...)}
}

// The category constants mirror spec.md §7's error taxonomy.
const (
	catNotEnoughBytesForSignature   = "NotEnoughBytesForSignature"
	catSignatureMismatch            = "SignatureMismatch"
	catEofWhileReading              = "EofWhileReading"
	catChunkCrcMismatch             = "ChunkCrcMismatch"
	catUnrecognizedCriticalChunk    = "UnrecognizedCriticalChunkType"
	catInvalidIhdrValue             = "InvalidIhdrValue"
	catOrderingFollowsViolation     = "OrderingFollowsViolation"
	catChunkDataLengthShort         = "ChunkDataLengthShort"
	catInflateError                 = "InflateError"
	catMissingPalette               = "MissingPalette"
	catOutOfRangePaletteIndex       = "OutOfRangePaletteIndex"
	catNoIdat                       = "NoIdat"
	catFirstChunkNotIhdr            = "FirstChunkNotIhdr"
	catBadFilterType                = "BadFilterType"
	catUnsupportedColorTypeAndDepth = "UnsupportedColorTypeAndDepth"
)
