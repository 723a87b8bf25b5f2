package png

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPaletteRejectsBadLengths(t *testing.T) {
	_, err := newPalette([]byte{1, 2}) // not divisible by 3
	require.NotNil(t, err)

	_, err = newPalette(nil) // zero entries
	require.NotNil(t, err)

	big := make([]byte, 257*3)
	_, err = newPalette(big)
	require.NotNil(t, err)
}

func TestPaletteGetRgbAndSetRgba(t *testing.T) {
	p, err := newPalette([]byte{10, 20, 30, 40, 50, 60})
	require.Nil(t, err)
	require.Equal(t, 2, p.Size())

	rgb, gerr := p.GetRgb(1)
	require.NoError(t, gerr)
	require.Equal(t, []byte{40, 50, 60}, rgb)

	_, gerr = p.GetRgb(2)
	require.Error(t, gerr)

	dst := make([]byte, 4)
	require.NoError(t, p.SetRgba(dst, 0, 0, 200))
	require.Equal(t, []byte{10, 20, 30, 200}, dst)

	require.Error(t, p.SetRgba(dst, 0, -1, 0))
}
