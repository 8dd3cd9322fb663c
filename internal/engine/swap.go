// Package engine implements the invariant-preserving swap and pricing
// functions of the constant-product AMM. Pool state is mutated here and
// nowhere else.
package engine

import (
	"fmt"
	"math"

	"github.com/lehajam/cpamm/internal/domain"
	"github.com/lehajam/cpamm/pkg/cpmm"
)

// DefaultPrecision is the absolute tolerance used by the constant-product
// check when the caller does not supply one.
const DefaultPrecision = 1e-7

// InvariantError reports a failed constant-product check with the full
// diagnostic state: both reserves, the expected constant, the computed
// product, the difference and the tolerance in force.
type InvariantError struct {
	X         float64
	Y         float64
	K         float64
	Product   float64
	Diff      float64
	Precision float64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf(
		"constant product invariant not satisfied: x=%g y=%g x*y=%g k=%g diff=%g precision=%g",
		e.X, e.Y, e.Product, e.K, e.Diff, e.Precision)
}

// AssertCPInvariant checks |x*y - k| <= precision. A non-positive precision
// selects DefaultPrecision. This is the correctness guard run before and
// after every mutating swap: it catches floating-point drift and caller
// misuse early instead of letting either propagate silently.
func AssertCPInvariant(x, y, k, precision float64) error {
	if precision <= 0 {
		precision = DefaultPrecision
	}
	product := x * y
	diff := math.Abs(product - k)
	if !(diff <= precision) {
		return &InvariantError{X: x, Y: y, K: k, Product: product, Diff: diff, Precision: precision}
	}
	return nil
}

// SwapOpts carries the optional swap parameters. Zero values select the
// defaults: K falls back to the product of the current balances and
// Precision to DefaultPrecision.
type SwapOpts struct {
	K         float64
	Precision float64
}

// ConstantProductSwap swaps dx tokens into poolX against poolY while
// preserving x*y = k, and returns the output amount and the average
// execution price dx/dy. The candidate post-state is validated before
// either pool is touched: on any error both pools are left exactly as
// found, never in a half-applied state.
func ConstantProductSwap(dx float64, poolX, poolY *domain.Pool, opts SwapOpts) (dy, execPrice float64, err error) {
	if math.IsNaN(dx) || dx <= 0 {
		return 0, 0, domain.ErrInvalidOrder
	}

	x := poolX.Balance()
	y := poolY.Balance()
	k := opts.K
	if k == 0 {
		k = x * y
	}

	if err := AssertCPInvariant(x, y, k, opts.Precision); err != nil {
		return 0, 0, err
	}

	dy = cpmm.AmountOut(x, y, dx)
	newX := x + dx
	newY := y - dy
	if err := AssertCPInvariant(newX, newY, k, opts.Precision); err != nil {
		return 0, 0, err
	}

	// Commit point: both appends or neither.
	poolX.Append(newX)
	poolY.Append(newY)
	return dy, dx / dy, nil
}

// SwapPrice returns the average execution price (x+dx)/y for an order of
// size dx against reserves (x, y). No mutation.
func SwapPrice(x, y, dx float64) float64 {
	return cpmm.ExecPrice(x, y, dx)
}

// ExecuteOrder runs a fee-adjusted trade order against a market pair: the
// net size is swapped through the pools matching the order orientation,
// the cash fee is collected in the in-token and pair volumes are updated.
func ExecuteOrder(mkt *domain.MarketPair, order *domain.TradeOrder, opts SwapOpts) (dy, execPrice float64, err error) {
	poolIn, poolOut, err := mkt.GetPools(order.Ticker())
	if err != nil {
		return 0, 0, err
	}

	dy, execPrice, err = ConstantProductSwap(order.NetOrderSize, poolIn, poolOut, opts)
	if err != nil {
		return 0, 0, err
	}

	mkt.CollectFee(order.TickerIn, order.CashTransactionFee)
	mkt.AddVolume(order.TickerIn, order.OrderSize)
	mkt.AddVolume(order.TickerOut, -dy)
	return dy, execPrice, nil
}
