// Package cpmm holds the closed-form constant-product formulas shared by
// the swap engine and the quote handlers. All functions are pure; callers
// are responsible for validating reserves and sizes.
package cpmm

import "math"

// AmountOut returns the output amount dy = y*dx/(x+dx) for swapping dx
// tokens into reserves (x, y). Fee handling is the caller's concern.
func AmountOut(x, y, dx float64) float64 {
	return y * dx / (x + dx)
}

// ExecPrice returns the average execution price (x+dx)/y of an order dx
// against reserves (x, y).
func ExecPrice(x, y, dx float64) float64 {
	return (x + dx) / y
}

// MidAtExecPrice returns the point on the hyperbola x*y = k where the
// instantaneous price x/y equals execPrice.
func MidAtExecPrice(k, execPrice float64) (x, y float64) {
	x = math.Sqrt(k * execPrice)
	return x, k / x
}

// DepthAt returns the synthetic order-book depth at mid price p for a pool
// seeded with x0 token-1 units at initial price p0, per "Order Book Depth
// and Liquidity Provision in Automated Market Makers". Depth is positive on
// both sides of the book and zero exactly at p0.
func DepthAt(x0, p0, p float64) float64 {
	switch {
	case p < p0:
		return x0 * (math.Sqrt(p0/p) - 1)
	case p > p0:
		return x0 * (1 - math.Sqrt(p0/p))
	default:
		return 0
	}
}

// ArbDeltaBase returns the net amount of token 1 to swap in so that the
// post-trade mid price (x+dx)^2/k equals the market price m.
func ArbDeltaBase(k, x, m float64) float64 {
	return math.Sqrt(k*m) - x
}

// ArbDeltaQuote returns the net amount of token 2 to swap in so that the
// post-trade mid price k/(y+dy)^2 equals the market price m.
func ArbDeltaQuote(k, y, m float64) float64 {
	return math.Sqrt(k/m) - y
}
