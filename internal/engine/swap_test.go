package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/lehajam/cpamm/internal/domain"
)

func newTestPools(t *testing.T, bal1, bal2 float64) (*domain.Pool, *domain.Pool) {
	t.Helper()
	pool1, err := domain.NewPool("A", bal1)
	if err != nil {
		t.Fatalf("NewPool(A) failed: %v", err)
	}
	pool2, err := domain.NewPool("B", bal2)
	if err != nil {
		t.Fatalf("NewPool(B) failed: %v", err)
	}
	return pool1, pool2
}

func TestAssertCPInvariant(t *testing.T) {
	if err := AssertCPInvariant(100, 10, 1000, 0); err != nil {
		t.Errorf("AssertCPInvariant(100, 10, 1000) = %v, want nil", err)
	}
	if err := AssertCPInvariant(100, 10, 1000+5e-8, 0); err != nil {
		t.Errorf("diff within default precision rejected: %v", err)
	}

	err := AssertCPInvariant(100, 10, 999, 0)
	var invErr *InvariantError
	if !errors.As(err, &invErr) {
		t.Fatalf("AssertCPInvariant(100, 10, 999) error = %v, want *InvariantError", err)
	}
	if invErr.X != 100 || invErr.Y != 10 || invErr.K != 999 {
		t.Errorf("diagnostics = (x=%v, y=%v, k=%v), want (100, 10, 999)", invErr.X, invErr.Y, invErr.K)
	}
	if invErr.Product != 1000 || invErr.Diff != 1 {
		t.Errorf("diagnostics = (product=%v, diff=%v), want (1000, 1)", invErr.Product, invErr.Diff)
	}
	if invErr.Precision != DefaultPrecision {
		t.Errorf("diagnostics precision = %v, want %v", invErr.Precision, DefaultPrecision)
	}

	// NaN product must never pass the check.
	if err := AssertCPInvariant(math.NaN(), 10, 1000, 0); err == nil {
		t.Error("AssertCPInvariant(NaN, ...) = nil, want error")
	}
}

func TestConstantProductSwap(t *testing.T) {
	// Pools A=100, B=10, k=1000; swapping dx=10 into A takes out
	// dy=10*10/110 and executes at 11.0.
	pool1, pool2 := newTestPools(t, 100, 10)

	dy, execPrice, err := ConstantProductSwap(10, pool1, pool2, SwapOpts{})
	if err != nil {
		t.Fatalf("ConstantProductSwap() failed: %v", err)
	}

	wantDy := 100.0 / 110.0
	if math.Abs(dy-wantDy) > 1e-12 {
		t.Errorf("dy = %v, want %v", dy, wantDy)
	}
	if math.Abs(execPrice-11.0) > 1e-12 {
		t.Errorf("execPrice = %v, want 11.0", execPrice)
	}
	if pool1.Balance() != 110 {
		t.Errorf("pool1 balance = %v, want 110", pool1.Balance())
	}
	if math.Abs(pool2.Balance()-100.0/11.0) > 1e-12 {
		t.Errorf("pool2 balance = %v, want %v", pool2.Balance(), 100.0/11.0)
	}
}

func TestConstantProductSwap_InvalidSize(t *testing.T) {
	for _, dx := range []float64{0, -1, math.NaN()} {
		pool1, pool2 := newTestPools(t, 100, 10)
		if _, _, err := ConstantProductSwap(dx, pool1, pool2, SwapOpts{}); !errors.Is(err, domain.ErrInvalidOrder) {
			t.Errorf("ConstantProductSwap(%v) error = %v, want ErrInvalidOrder", dx, err)
		}
		if len(pool1.Reserves) != 1 || len(pool2.Reserves) != 1 {
			t.Errorf("pools mutated on invalid size %v", dx)
		}
	}
}

func TestConstantProductSwap_LeavesPoolsUntouchedOnError(t *testing.T) {
	// A k that disagrees with the balances fails the pre-check; neither
	// pool may record a new reserve.
	pool1, pool2 := newTestPools(t, 100, 10)

	_, _, err := ConstantProductSwap(10, pool1, pool2, SwapOpts{K: 999})
	var invErr *InvariantError
	if !errors.As(err, &invErr) {
		t.Fatalf("error = %v, want *InvariantError", err)
	}
	if len(pool1.Reserves) != 1 || len(pool2.Reserves) != 1 {
		t.Fatalf("pools mutated on invariant violation: %d/%d reserves",
			len(pool1.Reserves), len(pool2.Reserves))
	}
	if pool1.Balance() != 100 || pool2.Balance() != 10 {
		t.Errorf("balances changed: (%v, %v), want (100, 10)", pool1.Balance(), pool2.Balance())
	}
}

func TestConstantProductSwap_PreservesInvariant(t *testing.T) {
	reserves := []struct {
		x, y float64
	}{
		{10, 2},
		{100, 100},
		{10000, 10000},
		{1000000, 1000000},
		{134566.678899, 134566.67889927},
		{0.333333333333333, 0.333333333333333},
		{0.333333333333333, 0.111111111111111},
	}
	for _, r := range reserves {
		pool1, pool2 := newTestPools(t, r.x, r.y)
		k := r.x * r.y
		// Tolerance scales with k: float64 keeps ~15-16 significant digits.
		precision := math.Max(DefaultPrecision, k*1e-12)

		for i := 0; i < 50; i++ {
			dx := 0.01 * pool1.Balance()
			if _, _, err := ConstantProductSwap(dx, pool1, pool2, SwapOpts{K: k, Precision: precision}); err != nil {
				t.Fatalf("swap %d on (%v, %v) failed: %v", i, r.x, r.y, err)
			}
		}

		if diff := math.Abs(pool1.Balance()*pool2.Balance() - k); diff > precision {
			t.Errorf("invariant drift for (%v, %v): |x*y - k| = %v > %v", r.x, r.y, diff, precision)
		}
	}
}

func TestSwapPrice(t *testing.T) {
	if got := SwapPrice(100, 10, 10); got != 11 {
		t.Errorf("SwapPrice(100, 10, 10) = %v, want 11", got)
	}
}

func TestExecuteOrder_BuySide(t *testing.T) {
	pool1, pool2 := newTestPools(t, 100, 10)
	mkt, err := domain.NewMarketPair(pool1, pool2, 0.1)
	if err != nil {
		t.Fatalf("NewMarketPair() failed: %v", err)
	}

	// Gross 11 at 10% fee nets exactly 10 into the pool.
	order, err := domain.NewTradeOrder("A/B", 11, 0.1)
	if err != nil {
		t.Fatalf("NewTradeOrder() failed: %v", err)
	}

	dy, execPrice, err := ExecuteOrder(mkt, order, SwapOpts{})
	if err != nil {
		t.Fatalf("ExecuteOrder() failed: %v", err)
	}
	if math.Abs(dy-100.0/110.0) > 1e-12 {
		t.Errorf("dy = %v, want %v", dy, 100.0/110.0)
	}
	if math.Abs(execPrice-11.0) > 1e-12 {
		t.Errorf("execPrice = %v, want 11", execPrice)
	}
	if math.Abs(mkt.TotalFees("A")-1.0) > 1e-12 {
		t.Errorf("TotalFees(A) = %v, want 1", mkt.TotalFees("A"))
	}
	if math.Abs(mkt.Volumes["A"]-11) > 1e-12 {
		t.Errorf("volume A = %v, want 11", mkt.Volumes["A"])
	}
	if math.Abs(mkt.Volumes["B"]+dy) > 1e-12 {
		t.Errorf("volume B = %v, want %v", mkt.Volumes["B"], -dy)
	}
}

func TestExecuteOrder_SellSide(t *testing.T) {
	pool1, pool2 := newTestPools(t, 100, 10)
	mkt, err := domain.NewMarketPair(pool1, pool2, 0)
	if err != nil {
		t.Fatalf("NewMarketPair() failed: %v", err)
	}

	// Negative size swaps token B in: dy out of A = 100*1/11.
	order, err := domain.NewTradeOrder("A/B", -1, 0)
	if err != nil {
		t.Fatalf("NewTradeOrder() failed: %v", err)
	}
	if order.Side != domain.SideSell {
		t.Fatalf("Side = %v, want sell", order.Side)
	}

	dy, _, err := ExecuteOrder(mkt, order, SwapOpts{})
	if err != nil {
		t.Fatalf("ExecuteOrder() failed: %v", err)
	}
	if math.Abs(dy-100.0/11.0) > 1e-12 {
		t.Errorf("dy = %v, want %v", dy, 100.0/11.0)
	}
	if math.Abs(mkt.Pool2.Balance()-11) > 1e-12 {
		t.Errorf("pool B balance = %v, want 11", mkt.Pool2.Balance())
	}
	if math.Abs(mkt.Pool1.Balance()-1000.0/11.0) > 1e-9 {
		t.Errorf("pool A balance = %v, want %v", mkt.Pool1.Balance(), 1000.0/11.0)
	}
}
