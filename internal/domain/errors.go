package domain

import "errors"

var (
	// ErrInvalidTradingPair is returned when a trading pair string does not
	// contain exactly one "/" separator.
	ErrInvalidTradingPair = errors.New("trading pair must contain exactly one / separator")

	// ErrUnknownTradingPair is returned when a requested ticker matches
	// neither a pair's ticker nor its inverse.
	ErrUnknownTradingPair = errors.New("unknown trading pair")

	// ErrInvalidOrder is returned for a zero, negative-net or NaN order size.
	ErrInvalidOrder = errors.New("order size must be a non-zero finite number")

	// ErrInvalidAmount is returned for a non-positive deposit or liquidity amount.
	ErrInvalidAmount = errors.New("amount must be positive")
)
