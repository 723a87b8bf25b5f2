package png

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaethPredictorTieBreakOrder(t *testing.T) {
	// a == b == c: all distances are 0, a wins.
	require.Equal(t, 5, paethPredictor(5, 5, 5))
	// pa == pb < pc: a wins over b.
	require.Equal(t, 10, paethPredictor(10, 10, 0))
	// pb == pc < pa: b wins over c (p = 5, pa = 10, pb = pc = 5).
	require.Equal(t, 0, paethPredictor(15, 0, 10))
}

func TestDefilterRowRoundTripsEveryFilterType(t *testing.T) {
	bpp := 3
	prior := []byte{10, 20, 30, 40, 50, 60}
	cur := []byte{15, 25, 35, 200, 5, 90}

	for ft := byte(filterNone); ft <= filterPaeth; ft++ {
		var dst [numFilters][]byte
		for f := range dst {
			dst[f] = make([]byte, len(cur)+1)
		}
		filterRow(cur, prior, bpp, dst)
		filtered := dst[ft][1:]

		recovered := make([]byte, len(cur))
		err := defilterRow(ft, filtered, prior, recovered, bpp)
		require.Nil(t, err, "filter type %d", ft)
		require.Equal(t, cur, recovered, "filter type %d", ft)
	}
}

func TestDefilterRowBadFilterType(t *testing.T) {
	err := defilterRow(99, []byte{1, 2, 3}, []byte{0, 0, 0}, make([]byte, 3), 3)
	require.NotNil(t, err)
	require.Equal(t, catBadFilterType, err.Category)
}

func TestChooseFilterPicksSmallestSumAbs(t *testing.T) {
	// Row of all zeros: filterNone's residual is all zero, trivially
	// minimal, so it must win regardless of the other four candidates.
	cur := make([]byte, 12)
	prior := make([]byte, 12)
	var dst [numFilters][]byte
	for f := range dst {
		dst[f] = make([]byte, len(cur)+1)
	}
	filterRow(cur, prior, 4, dst)
	chosen := chooseFilter(dst)
	require.Equal(t, byte(filterNone), chosen[0])
}
