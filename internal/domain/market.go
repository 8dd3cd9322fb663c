package domain

import "math"

// MarketPair owns the two liquidity pools of one trading pair plus the swap
// fee. Pools are exclusively owned: a pool is never shared across pairs.
type MarketPair struct {
	Pool1   *Pool
	Pool2   *Pool
	SwapFee float64

	// TransactionFees accumulates collected swap fees keyed by the ticker
	// of the token the fee was paid in.
	TransactionFees map[string][]float64

	// Volumes accumulates gross traded volume per token ticker. Amounts
	// flowing into a pool count positive, amounts taken out negative.
	Volumes map[string]float64

	// MktPrice is the most recent external market quote for the pair,
	// expressed like the mid price (token 1 per token 2). Zero until the
	// first quote is observed. It sizes arbitrage trades only and never
	// moves reserves by itself.
	MktPrice float64
}

// NewMarketPair wires two pools and a swap fee into a market pair.
func NewMarketPair(pool1, pool2 *Pool, swapFee float64) (*MarketPair, error) {
	if math.IsNaN(swapFee) || swapFee < 0 {
		return nil, ErrInvalidAmount
	}
	return &MarketPair{
		Pool1:   pool1,
		Pool2:   pool2,
		SwapFee: swapFee,
		TransactionFees: map[string][]float64{
			pool1.Ticker: nil,
			pool2.Ticker: nil,
		},
		Volumes: map[string]float64{
			pool1.Ticker: 0,
			pool2.Ticker: 0,
		},
	}, nil
}

// NewMarketFromQuotes seeds a pair by splitting liqAmount 50/50 between the
// two tokens at their market prices.
func NewMarketFromQuotes(liqAmount float64, quote1, quote2 MarketQuote, swapFee float64) (*MarketPair, error) {
	if math.IsNaN(liqAmount) || liqAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	liqPerToken := liqAmount / 2.0
	pool1, err := NewPool(quote1.TokenBase, liqPerToken/quote1.Price)
	if err != nil {
		return nil, err
	}
	pool2, err := NewPool(quote2.TokenBase, liqPerToken/quote2.Price)
	if err != nil {
		return nil, err
	}
	return NewMarketPair(pool1, pool2, swapFee)
}

// Ticker returns the trading pair ticker, e.g. "ETH/USD".
func (m *MarketPair) Ticker() string {
	return m.Pool1.Ticker + "/" + m.Pool2.Ticker
}

// InverseTicker returns the reversed trading pair ticker.
func (m *MarketPair) InverseTicker() string {
	return m.Pool2.Ticker + "/" + m.Pool1.Ticker
}

// CPInvariant returns the current constant product of the two balances.
func (m *MarketPair) CPInvariant() float64 {
	return m.Pool1.Balance() * m.Pool2.Balance()
}

// MidPrice returns the instantaneous exchange rate of the pair,
// token 1 per token 2.
func (m *MarketPair) MidPrice() float64 {
	return m.Pool1.Balance() / m.Pool2.Balance()
}

// GetPools returns the two pools ordered to match the requested ticker
// orientation. The pair's own ticker and its inverse are the only valid
// inputs.
func (m *MarketPair) GetPools(tradingPair string) (*Pool, *Pool, error) {
	switch tradingPair {
	case m.Ticker():
		return m.Pool1, m.Pool2, nil
	case m.InverseTicker():
		return m.Pool2, m.Pool1, nil
	default:
		return nil, nil, ErrUnknownTradingPair
	}
}

// GetReserves returns the two balances ordered to match the requested
// ticker orientation.
func (m *MarketPair) GetReserves(tradingPair string) (float64, float64, error) {
	pool1, pool2, err := m.GetPools(tradingPair)
	if err != nil {
		return 0, 0, err
	}
	return pool1.Balance(), pool2.Balance(), nil
}

// AddLiquidity splits liqAmount between the two pools proportionally to
// their market value weight alpha = p1*x / (p1*x + p2*y). The split is
// neutral with respect to the supplied market quotes, not with respect to
// the pool's own mid price: when the quotes diverge from the pool ratio the
// internal price moves. This is the intended behavior.
func (m *MarketPair) AddLiquidity(liqAmount float64, quote1, quote2 MarketQuote) error {
	if math.IsNaN(liqAmount) || liqAmount <= 0 {
		return ErrInvalidAmount
	}
	x := m.Pool1.Balance()
	y := m.Pool2.Balance()
	alpha := (quote1.Price * x) / (quote1.Price*x + quote2.Price*y)
	m.Pool1.Append(x + liqAmount*alpha/quote1.Price)
	m.Pool2.Append(y + liqAmount*(1-alpha)/quote2.Price)
	return nil
}

// SetMktPrice records the current external market quote for the pair.
func (m *MarketPair) SetMktPrice(price float64) {
	m.MktPrice = price
}

// CollectFee records a swap fee paid in the given token.
func (m *MarketPair) CollectFee(ticker string, fee float64) {
	m.TransactionFees[ticker] = append(m.TransactionFees[ticker], fee)
}

// AddVolume accumulates traded volume for the given token. Use positive
// amounts for tokens swapped into the pair and negative for tokens taken out.
func (m *MarketPair) AddVolume(ticker string, amount float64) {
	m.Volumes[ticker] += amount
}

// TotalFees sums the collected fees for one token.
func (m *MarketPair) TotalFees(ticker string) float64 {
	var total float64
	for _, f := range m.TransactionFees[ticker] {
		total += f
	}
	return total
}

// Reset truncates both pools to their initial deposits and clears the fee
// and volume accumulators, replaying the pair from its starting state.
func (m *MarketPair) Reset() {
	m.Pool1.Reset()
	m.Pool2.Reset()
	for ticker := range m.TransactionFees {
		m.TransactionFees[ticker] = nil
	}
	for ticker := range m.Volumes {
		m.Volumes[ticker] = 0
	}
	m.MktPrice = 0
}

// PairSnapshot is a point-in-time capture of pair-level descriptive state,
// embedded into each execution record.
type PairSnapshot struct {
	MidPrice     float64 `json:"mid_price"`
	MktPrice     float64 `json:"mkt_price"`
	Balance1     float64 `json:"balance_1"`
	Balance2     float64 `json:"balance_2"`
	TotalVolume1 float64 `json:"total_volume_1"`
	TotalVolume2 float64 `json:"total_volume_2"`
	TotalFees1   float64 `json:"total_fees_1"`
	TotalFees2   float64 `json:"total_fees_2"`
}

// Describe captures the current descriptive state of the pair.
func (m *MarketPair) Describe() PairSnapshot {
	return PairSnapshot{
		MidPrice:     m.MidPrice(),
		MktPrice:     m.MktPrice,
		Balance1:     m.Pool1.Balance(),
		Balance2:     m.Pool2.Balance(),
		TotalVolume1: m.Volumes[m.Pool1.Ticker],
		TotalVolume2: m.Volumes[m.Pool2.Ticker],
		TotalFees1:   m.TotalFees(m.Pool1.Ticker),
		TotalFees2:   m.TotalFees(m.Pool2.Ticker),
	}
}
