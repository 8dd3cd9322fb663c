package domain

import (
	"fmt"
	"strings"
)

// SplitTicker splits a "BASE/QUOTE" trading pair string into its two tokens.
func SplitTicker(tradingPair string) (base, quote string, err error) {
	if strings.Count(tradingPair, "/") != 1 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidTradingPair, tradingPair)
	}
	parts := strings.SplitN(tradingPair, "/", 2)
	return parts[0], parts[1], nil
}

// MarketQuote is an external market price observation for one side of a
// pair. Immutable; constructed fresh per observed tick.
type MarketQuote struct {
	TokenBase  string
	TokenQuote string
	Price      float64
}

// NewMarketQuote parses a "BASE/QUOTE" pair string and attaches a price.
func NewMarketQuote(tradingPair string, price float64) (MarketQuote, error) {
	base, quote, err := SplitTicker(tradingPair)
	if err != nil {
		return MarketQuote{}, err
	}
	return MarketQuote{TokenBase: base, TokenQuote: quote, Price: price}, nil
}

// Ticker returns the trading pair ticker, e.g. "ETH/USD".
func (q MarketQuote) Ticker() string {
	return q.TokenBase + "/" + q.TokenQuote
}

func (q MarketQuote) String() string {
	return fmt.Sprintf("%s=%g", q.Ticker(), q.Price)
}
