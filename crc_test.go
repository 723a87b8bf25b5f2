package png

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCrcChunkKnownVector(t *testing.T) {
	// CRC-32 of the four ASCII bytes "IEND" with no chunk data is a
	// widely-quoted PNG constant.
	got := crcChunk([4]byte{'I', 'E', 'N', 'D'}, nil)
	require.Equal(t, uint32(0xAE426082), got)
}

func TestCrcChunkDiffersOnData(t *testing.T) {
	a := crcChunk([4]byte{'t', 'E', 'X', 't'}, []byte("hello"))
	b := crcChunk([4]byte{'t', 'E', 'X', 't'}, []byte("hellp"))
	require.NotEqual(t, a, b)
}
