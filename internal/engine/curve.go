package engine

import (
	"github.com/lehajam/cpamm/internal/domain"
	"github.com/lehajam/cpamm/pkg/cpmm"
)

// CurveOpts carries the optional parameters of the curve and order-book
// functions. Zero values select the defaults: K = product of balances,
// XMin = 0.1*balance1, XMax = 5*balance1, Num = 1000 points.
type CurveOpts struct {
	K    float64
	XMin float64
	XMax float64
	Num  int
}

// ConstantProductCurve samples Num evenly spaced points of the AMM curve
// y = k/x over [XMin, XMax]. Pure: pool state is never touched.
func ConstantProductCurve(pool1, pool2 *domain.Pool, opts CurveOpts) (xs, ys []float64) {
	k := opts.K
	if k == 0 {
		k = pool1.Balance() * pool2.Balance()
	}
	xMin := opts.XMin
	if xMin == 0 {
		xMin = 0.1 * pool1.Balance()
	}
	xMax := opts.XMax
	if xMax == 0 {
		xMax = 5.0 * pool1.Balance()
	}
	num := opts.Num
	if num < 2 {
		num = 1000
	}

	xs = make([]float64, num)
	ys = make([]float64, num)
	step := (xMax - xMin) / float64(num-1)
	for i := 0; i < num; i++ {
		x := xMin + float64(i)*step
		xs[i] = x
		ys[i] = k / x
	}
	return xs, ys
}

// ImpactOpts carries the optional parameters of PriceImpact. Zero values
// select the defaults: K = product of balances, Dx = 0.1*balance1,
// Precision = DefaultPrecision.
type ImpactOpts struct {
	K         float64
	Dx        float64
	Precision float64
}

// PriceImpact computes the price impact range of a hypothetical order of
// size Dx without mutating the pools: the pre-trade point, the post-trade
// point, and the analytic point on the hyperbola where the instantaneous
// price equals the trade's average execution price.
func PriceImpact(pool1, pool2 *domain.Pool, opts ImpactOpts) (domain.PriceImpactRange, error) {
	k := opts.K
	if k == 0 {
		k = pool1.Balance() * pool2.Balance()
	}
	dx := opts.Dx
	if dx == 0 {
		dx = 0.1 * pool1.Balance()
	}

	xStart := pool1.Balance()
	yStart := pool2.Balance()
	xEnd := xStart + dx
	yEnd := yStart * (1.0 - dx/(xStart+dx))

	if err := AssertCPInvariant(xStart, yStart, k, opts.Precision); err != nil {
		return domain.PriceImpactRange{}, err
	}
	if err := AssertCPInvariant(xEnd, yEnd, k, opts.Precision); err != nil {
		return domain.PriceImpactRange{}, err
	}

	execPrice := SwapPrice(xStart, yStart, dx)
	xMid, yMid := cpmm.MidAtExecPrice(k, execPrice)

	ticker := pool1.Ticker + "/" + pool2.Ticker
	start, err := domain.NewMidPrice(ticker, xStart, yStart)
	if err != nil {
		return domain.PriceImpactRange{}, err
	}
	mid, err := domain.NewMidPrice(ticker, xMid, yMid)
	if err != nil {
		return domain.PriceImpactRange{}, err
	}
	end, err := domain.NewMidPrice(ticker, xEnd, yEnd)
	if err != nil {
		return domain.PriceImpactRange{}, err
	}
	return domain.PriceImpactRange{Start: start, Mid: mid, End: end}, nil
}

// OrderBook computes the synthetic order-book depth along the constant
// product curve. For each sampled point it returns the token-1 reserve,
// the mid price, and the cumulative quantity available at that price
// relative to the pool's initial deposit.
func OrderBook(pool1, pool2 *domain.Pool, opts CurveOpts) (xs, mids, quantities []float64) {
	x0 := pool1.InitialDeposit()
	p0 := pool1.InitialDeposit() / pool2.InitialDeposit()

	xs, ys := ConstantProductCurve(pool1, pool2, opts)
	mids = make([]float64, len(xs))
	quantities = make([]float64, len(xs))
	for i := range xs {
		p := xs[i] / ys[i]
		mids[i] = p
		quantities[i] = cpmm.DepthAt(x0, p0, p)
	}
	return xs, mids, quantities
}
