package engine

import (
	"math"

	"github.com/lehajam/cpamm/internal/domain"
	"github.com/lehajam/cpamm/pkg/cpmm"
)

// CalcArbTrade sizes the trade that aligns the pool mid price with the
// pair's current market quote under the pair's swap fee, and returns the
// signed gross order size together with the expected profit marked to the
// quote, in token-1 units. A positive size swaps token 1 in, a negative
// size token 2. Zero size means the pool already trades at the quote or
// no quote has been observed; callers only execute when profit > 0.
func CalcArbTrade(mkt *domain.MarketPair) (size, profit float64) {
	m := mkt.MktPrice
	if math.IsNaN(m) || m <= 0 {
		return 0, 0
	}

	x := mkt.Pool1.Balance()
	y := mkt.Pool2.Balance()
	k := x * y
	mid := x / y

	switch {
	case m > mid:
		// Pool undervalues token 2: buy it from the pool, sell at the quote.
		dxNet := cpmm.ArbDeltaBase(k, x, m)
		if dxNet <= 0 {
			return 0, 0
		}
		dyOut := cpmm.AmountOut(x, y, dxNet)
		gross := dxNet * (1 + mkt.SwapFee)
		return gross, dyOut*m - gross
	case m < mid:
		// Pool overvalues token 2: buy token 1 from the pool instead.
		dyNet := cpmm.ArbDeltaQuote(k, y, m)
		if dyNet <= 0 {
			return 0, 0
		}
		dxOut := cpmm.AmountOut(y, x, dyNet)
		gross := dyNet * (1 + mkt.SwapFee)
		return -gross, dxOut - gross*m
	default:
		return 0, 0
	}
}
