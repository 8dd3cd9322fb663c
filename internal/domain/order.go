package domain

import "math"

// Side labels the direction of a trade relative to the pair orientation.
type Side string

const (
	// SideBuy swaps token 1 into the pair (positive feed quantity).
	SideBuy Side = "buy"
	// SideSell swaps token 2 into the pair (negative feed quantity).
	SideSell Side = "sell"
)

// TradeOrder is a fee-adjusted request to swap one token for the other.
// Value object: created per trade, not retained.
type TradeOrder struct {
	TickerIn           string
	TickerOut          string
	Side               Side
	OrderSize          float64
	NetOrderSize       float64
	CashTransactionFee float64
}

// NewTradeOrder builds an order from a trading pair string and a signed
// size. A negative size trades in the inverse orientation (sell side).
// The swap fee is carved out of the gross size up front: the pool only
// sees NetOrderSize = size / (1 + fee).
func NewTradeOrder(tradingPair string, orderSize, fee float64) (*TradeOrder, error) {
	tickerIn, tickerOut, err := SplitTicker(tradingPair)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(orderSize) || math.IsInf(orderSize, 0) || orderSize == 0 {
		return nil, ErrInvalidOrder
	}
	if math.IsNaN(fee) || fee < 0 {
		return nil, ErrInvalidAmount
	}

	side := SideBuy
	if orderSize < 0 {
		side = SideSell
		orderSize = -orderSize
		tickerIn, tickerOut = tickerOut, tickerIn
	}

	netOrderSize := orderSize / (1.0 + fee)
	return &TradeOrder{
		TickerIn:           tickerIn,
		TickerOut:          tickerOut,
		Side:               side,
		OrderSize:          orderSize,
		NetOrderSize:       netOrderSize,
		CashTransactionFee: orderSize - netOrderSize,
	}, nil
}

// Ticker returns the order's trading pair ticker in execution orientation.
func (o *TradeOrder) Ticker() string {
	return o.TickerIn + "/" + o.TickerOut
}

// DefaultTradeOrder returns an order equal to 10% of the first pool.
func DefaultTradeOrder(mkt *MarketPair) (*TradeOrder, error) {
	return NewTradeOrder(mkt.Ticker(), 0.1*mkt.Pool1.Balance(), mkt.SwapFee)
}
