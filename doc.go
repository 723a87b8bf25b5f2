// Package png implements a decoder and encoder for the PNG raster image
// format (ISO/IEC 15948).
//
// The emphasis is on correct binary parsing, chunk ordering/cardinality
// validation, CRC-32 checking, and bit-exact round-tripping of the IDAT
// pipeline (inflate, scanline defilter, Adam7 deinterlace, sample packing,
// RGBA expansion). Decode and Encode are pure functions of their input plus
// options: neither keeps state between calls, and both can be called
// concurrently on disjoint inputs.
//
// This package does not implement APNG, streaming/partial decode, gamma
// correction, ICC profile interpretation, or image resampling. Ancillary
// chunks that carry opaque metadata (eXIf, iCCP's compressed profile, and
// so on) are parsed into their documented byte layout but never interpreted
// further.
package png
