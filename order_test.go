package png

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckOrderSingularWarnsThenEscalatesUnderStrict(t *testing.T) {
	ctx := newDecodeContext(DecodeOptions{}, nil)
	ctx.seen["PLTE"] = true

	err := checkOrder(ctx, "PLTE", 42)
	require.Nil(t, err)
	require.Len(t, ctx.warnings, 1)
	require.Contains(t, ctx.warnings[0].Message, "Multiple PLTE chunks not allowed")

	strictCtx := newDecodeContext(DecodeOptions{StrictMode: true}, nil)
	strictCtx.seen["PLTE"] = true
	err = checkOrder(strictCtx, "PLTE", 42)
	require.NotNil(t, err)
	require.Equal(t, catOrderingFollowsViolation, err.Category)
}

func TestCheckOrderPrecedesViolation(t *testing.T) {
	ctx := newDecodeContext(DecodeOptions{}, nil)
	ctx.seen["IDAT"] = true

	err := checkOrder(ctx, "pHYs", 7)
	require.Nil(t, err)
	require.Len(t, ctx.warnings, 1)
	require.Contains(t, ctx.warnings[0].Message, "pHYs: Must precede IDAT")
}

func TestCheckOrderFollowsIsAlwaysFatal(t *testing.T) {
	ctx := newDecodeContext(DecodeOptions{}, nil)
	// PLTE never seen: hIST's follows(PLTE) rule is violated.
	err := checkOrder(ctx, "hIST", 3)
	require.NotNil(t, err)
	require.Equal(t, "hIST: Must follow PLTE", err.Message)
}

func TestCheckOrderMutualExclusionOnlyFatalUnderStrict(t *testing.T) {
	ctx := newDecodeContext(DecodeOptions{}, nil)
	ctx.seen["sRGB"] = true

	err := checkOrder(ctx, "iCCP", 0)
	require.Nil(t, err)
	require.Len(t, ctx.warnings, 1)

	strictCtx := newDecodeContext(DecodeOptions{StrictMode: true}, nil)
	strictCtx.seen["sRGB"] = true
	err = checkOrder(strictCtx, "iCCP", 0)
	require.NotNil(t, err)
}
