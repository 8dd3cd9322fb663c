package sim

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/lehajam/cpamm/internal/domain"
)

func newSimPair(t *testing.T, bal1, bal2, fee float64) *domain.MarketPair {
	t.Helper()
	pool1, err := domain.NewPool("A", bal1)
	if err != nil {
		t.Fatalf("NewPool() failed: %v", err)
	}
	pool2, err := domain.NewPool("B", bal2)
	if err != nil {
		t.Fatalf("NewPool() failed: %v", err)
	}
	mkt, err := domain.NewMarketPair(pool1, pool2, fee)
	if err != nil {
		t.Fatalf("NewMarketPair() failed: %v", err)
	}
	return mkt
}

func simDate(day int) time.Time {
	return time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC)
}

func TestRun_SingleBuy(t *testing.T) {
	mkt := newSimPair(t, 100, 10, 0)
	sim := NewSimulator(mkt, UniV2{}, 0)

	res, err := sim.Run(context.Background(), []TradeEvent{
		{TradeDate: simDate(1), Price: 10, Quantity: 10},
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}

	r := res.Records[0]
	if r.Side != domain.SideBuy {
		t.Errorf("side = %s, want buy", r.Side)
	}
	if math.Abs(r.Price-11) > 1e-12 {
		t.Errorf("exec price = %v, want 11", r.Price)
	}
	if math.Abs(r.PriceImpact-(-0.1)) > 1e-12 {
		t.Errorf("price impact = %v, want -0.1", r.PriceImpact)
	}
	if math.Abs(r.VolumeOut-100.0/110.0) > 1e-12 {
		t.Errorf("volume out = %v, want %v", r.VolumeOut, 100.0/110.0)
	}
	if r.Snapshot.Balance1 != 110 {
		t.Errorf("snapshot balance1 = %v, want 110", r.Snapshot.Balance1)
	}
}

func TestRun_SellRecordsPairOrientedPrice(t *testing.T) {
	mkt := newSimPair(t, 100, 10, 0)
	sim := NewSimulator(mkt, UniV2{}, 0)

	res, err := sim.Run(context.Background(), []TradeEvent{
		{TradeDate: simDate(1), Price: 10, Quantity: -1},
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	r := res.Records[0]

	if r.Side != domain.SideSell {
		t.Fatalf("side = %s, want sell", r.Side)
	}
	if r.TickerIn != "B" || r.TickerOut != "A" {
		t.Errorf("tickers = (%s, %s), want (B, A)", r.TickerIn, r.TickerOut)
	}
	// Selling 1 B into (100, 10) returns 100/11 A. The raw execution price
	// is 11/100 A-in per B-out; recorded in pair orientation it is 100/11.
	if math.Abs(r.Price-100.0/11.0) > 1e-12 {
		t.Errorf("price = %v, want %v", r.Price, 100.0/11.0)
	}
	if r.PriceImpact <= 0 {
		t.Errorf("sell price impact = %v, want > 0", r.PriceImpact)
	}
}

func TestRun_ZeroQuantityProducesNoRecord(t *testing.T) {
	mkt := newSimPair(t, 100, 10, 0)
	sim := NewSimulator(mkt, UniV2{}, 0)

	res, err := sim.Run(context.Background(), []TradeEvent{
		{TradeDate: simDate(1), Price: 10, Quantity: 0},
		{TradeDate: simDate(2), Price: 10, Quantity: 10},
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(res.Records) != 1 {
		t.Errorf("got %d records, want 1", len(res.Records))
	}
	if mkt.MktPrice != 10 {
		t.Errorf("market quote = %v, want 10", mkt.MktPrice)
	}
}

func TestRun_ArbCorrectsBeforeTrade(t *testing.T) {
	mkt := newSimPair(t, 100, 10, 0)
	sim := NewSimulator(mkt, UniV2{ArbEnabled: true}, 0)

	res, err := sim.Run(context.Background(), []TradeEvent{
		{TradeDate: simDate(1), Price: 12, Quantity: 5},
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("got %d records, want arb + trade", len(res.Records))
	}

	arb, own := res.Records[0], res.Records[1]
	if arb.ArbProfit <= 0 {
		t.Errorf("arb record profit = %v, want > 0", arb.ArbProfit)
	}
	if own.ArbProfit != 0 {
		t.Errorf("own trade carries arb profit %v, want 0", own.ArbProfit)
	}
	// The arb leaves the pool mid at the quote, so the own trade executes
	// from the corrected state.
	if math.Abs(arb.Snapshot.MidPrice-12) > 1e-9 {
		t.Errorf("mid after arb = %v, want 12", arb.Snapshot.MidPrice)
	}
	if res.Summary.TotalArbProfit != arb.ArbProfit {
		t.Errorf("total arb profit = %v, want %v", res.Summary.TotalArbProfit, arb.ArbProfit)
	}
}

func TestRun_AlignedQuoteSkipsArb(t *testing.T) {
	mkt := newSimPair(t, 100, 10, 0)
	sim := NewSimulator(mkt, UniV2{ArbEnabled: true}, 0)

	res, err := sim.Run(context.Background(), []TradeEvent{
		{TradeDate: simDate(1), Price: 10, Quantity: 5},
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(res.Records) != 1 {
		t.Errorf("got %d records, want 1 (no arb at mid)", len(res.Records))
	}
}

func TestRun_Cancellation(t *testing.T) {
	mkt := newSimPair(t, 100, 10, 0)
	sim := NewSimulator(mkt, UniV2{}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Run(ctx, []TradeEvent{{TradeDate: simDate(1), Price: 10, Quantity: 1}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(mkt.Pool1.Reserves) != 1 {
		t.Error("cancelled run mutated pool state")
	}
}

func TestRun_InvalidQuantityAborts(t *testing.T) {
	mkt := newSimPair(t, 100, 10, 0)
	sim := NewSimulator(mkt, UniV2{}, 0)

	_, err := sim.Run(context.Background(), []TradeEvent{
		{TradeDate: simDate(1), Price: 10, Quantity: 1},
		{TradeDate: simDate(2), Price: 10, Quantity: math.NaN()},
	})
	if !errors.Is(err, domain.ErrInvalidOrder) {
		t.Fatalf("Run() error = %v, want ErrInvalidOrder", err)
	}
	if !strings.Contains(err.Error(), "2024-03-02") {
		t.Errorf("error %q does not name the failing trade date", err)
	}
}

func TestRun_SequentialPricing(t *testing.T) {
	// Two identical buys: the second executes on depleted reserves and
	// must pay strictly more per unit.
	mkt := newSimPair(t, 100, 10, 0)
	sim := NewSimulator(mkt, UniV2{}, 0)

	res, err := sim.Run(context.Background(), []TradeEvent{
		{TradeDate: simDate(1), Price: 10, Quantity: 10},
		{TradeDate: simDate(2), Price: 10, Quantity: 10},
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if !(res.Records[1].Price > res.Records[0].Price) {
		t.Errorf("second buy price %v not above first %v",
			res.Records[1].Price, res.Records[0].Price)
	}
}

func TestRun_FeeAccumulation(t *testing.T) {
	mkt := newSimPair(t, 100, 10, 0.1)
	sim := NewSimulator(mkt, UniV2{}, 0)

	res, err := sim.Run(context.Background(), []TradeEvent{
		{TradeDate: simDate(1), Price: 10, Quantity: 11},
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	r := res.Records[0]
	if math.Abs(r.Fee-1) > 1e-12 {
		t.Errorf("fee = %v, want 1 (gross 11 at 10%%)", r.Fee)
	}
	if math.Abs(res.Summary.TotalFees1-1) > 1e-12 {
		t.Errorf("total fees 1 = %v, want 1", res.Summary.TotalFees1)
	}
}
