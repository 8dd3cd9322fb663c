package domain

import "math"

// Pool owns the append-only reserve history of one token.
// Reserves[0] is the initial deposit, Reserves[len-1] the current balance.
// The full history is kept so balance-over-time can be reported after a run.
type Pool struct {
	Ticker   string
	Reserves []float64
}

// NewPool creates a pool seeded with a single deposit.
func NewPool(ticker string, initialDeposit float64) (*Pool, error) {
	if math.IsNaN(initialDeposit) || initialDeposit <= 0 {
		return nil, ErrInvalidAmount
	}
	return &Pool{
		Ticker:   ticker,
		Reserves: []float64{initialDeposit},
	}, nil
}

// Balance returns the current balance of the pool.
func (p *Pool) Balance() float64 {
	return p.Reserves[len(p.Reserves)-1]
}

// InitialDeposit returns the seed deposit of the pool.
func (p *Pool) InitialDeposit() float64 {
	return p.Reserves[0]
}

// Append records a new balance. Only the swap engine and liquidity
// operations may call this; reserves are never removed.
func (p *Pool) Append(balance float64) {
	p.Reserves = append(p.Reserves, balance)
}

// Reset truncates the history back to the initial deposit. Used to replay
// a pair from its starting state between independent simulation runs.
func (p *Pool) Reset() {
	p.Reserves = p.Reserves[:1]
}
