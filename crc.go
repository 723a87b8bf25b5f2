package png

import "hash/crc32"

// crcChunk covers the type+data portion of a chunk: polynomial 0xEDB88320
// (reflected), pre/post-inverted, which is exactly hash/crc32's IEEE table.
// Both fumin/png and shutej/apng reach for crc32.NewIEEE() directly rather
// than a third-party CRC package, and there is no PNG-relevant precedent in
// the retrieved corpus for anything else — see DESIGN.md.
func crcChunk(typ [4]byte, data []byte) uint32 {
	h := crc32.NewIEEE()
	h.Write(typ[:])
	h.Write(data)
	return h.Sum32()
}
