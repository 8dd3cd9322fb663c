// Package onchain seeds market pairs from live Uniswap V2 pair contracts.
package onchain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

// Dial connects to an Ethereum JSON-RPC endpoint with a bounded timeout.
func Dial(ctx context.Context, url string) (*ethclient.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	return ethclient.DialContext(ctx, url)
}
