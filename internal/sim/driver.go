// Package sim drives a market pair through a time-ordered trade feed and
// aggregates the resulting execution records. Processing is strictly
// sequential: the execution price of each trade depends on the reserve
// state left behind by every trade before it.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/lehajam/cpamm/internal/domain"
	"github.com/lehajam/cpamm/internal/engine"
)

// TradeEvent is one row of the externally supplied trade feed. Quantity is
// signed: positive swaps token 1 in, negative token 2. The caller
// guarantees non-decreasing TradeDate; the driver never sorts.
type TradeEvent struct {
	TradeDate time.Time `json:"trade_date"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
}

// ExecRecord captures one executed swap together with a snapshot of the
// pair-level descriptive state right after it.
type ExecRecord struct {
	TradeDate   time.Time           `json:"trade_date"`
	Side        domain.Side         `json:"side"`
	ArbProfit   float64             `json:"arb_profit"`
	Price       float64             `json:"price"`
	PriceImpact float64             `json:"price_impact"`
	TickerIn    string              `json:"ticker_in"`
	TickerOut   string              `json:"ticker_out"`
	VolumeIn    float64             `json:"volume_in"`
	VolumeOut   float64             `json:"volume_out"`
	Fee         float64             `json:"fee"`
	Snapshot    domain.PairSnapshot `json:"snapshot"`
}

// Simulator replays a trade feed against a single market pair. It owns the
// pair for the duration of a run; there is no concurrent access.
type Simulator struct {
	mkt      *domain.MarketPair
	strategy Strategy
	opts     engine.SwapOpts
}

// NewSimulator wires a market pair to a strategy. precision configures the
// invariant tolerance passed through to every swap; zero selects the
// engine default.
func NewSimulator(mkt *domain.MarketPair, strategy Strategy, precision float64) *Simulator {
	return &Simulator{
		mkt:      mkt,
		strategy: strategy,
		opts:     engine.SwapOpts{Precision: precision},
	}
}

// Run applies the feed in order and returns the aggregated results. Any
// engine error aborts the whole run: an invariant violation mid-feed is
// fatal, never partial. Cancellation is checked once per event.
func (s *Simulator) Run(ctx context.Context, events []TradeEvent) (*Results, error) {
	// At most two executions per event: the arbitrage correction plus the
	// event's own trade. Pre-sizing keeps the loop free of growth churn.
	records := make([]ExecRecord, 0, 2*len(events))

	for i := range events {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		ev := &events[i]
		s.mkt.SetMktPrice(ev.Price)

		recs, err := s.strategy.OnTrade(ev, s.mkt, s.opts)
		if err != nil {
			return nil, fmt.Errorf("trade at %s: %w", ev.TradeDate.Format(time.RFC3339), err)
		}
		records = append(records, recs...)
	}

	return BuildResults(records), nil
}

// ExecuteTrade runs one signed trade against the pair and builds its
// execution record. The recorded price is always expressed in the pair
// orientation (token 1 per token 2): sell-side swaps run through the
// inverse pair, so their raw execution price is inverted back before the
// price impact is taken against the pre-trade mid.
func ExecuteTrade(mkt *domain.MarketPair, tradeDate time.Time, volume, arbProfit float64, opts engine.SwapOpts) (ExecRecord, error) {
	midBefore := mkt.MidPrice()

	order, err := domain.NewTradeOrder(mkt.Ticker(), volume, mkt.SwapFee)
	if err != nil {
		return ExecRecord{}, err
	}

	dy, execPrice, err := engine.ExecuteOrder(mkt, order, opts)
	if err != nil {
		return ExecRecord{}, err
	}

	price := execPrice
	if order.Side == domain.SideSell {
		price = 1 / execPrice
	}

	return ExecRecord{
		TradeDate:   tradeDate,
		Side:        order.Side,
		ArbProfit:   arbProfit,
		Price:       price,
		PriceImpact: (midBefore - price) / midBefore,
		TickerIn:    order.TickerIn,
		TickerOut:   order.TickerOut,
		VolumeIn:    order.OrderSize,
		VolumeOut:   dy,
		Fee:         order.CashTransactionFee,
		Snapshot:    mkt.Describe(),
	}, nil
}
