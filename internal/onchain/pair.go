package onchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/lehajam/cpamm/internal/domain"
)

var (
	ErrEmptyReserves = errors.New("empty reserves")
)

// StateReader is the slice of the Ethereum client the pair reader needs.
// *ethclient.Client satisfies it.
type StateReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error)
}

// PairReader reads Uniswap V2 pair reserves straight from contract
// storage and turns them into a simulatable market pair.
type PairReader struct {
	client StateReader
	logger *slog.Logger
}

func NewPairReader(client StateReader, logger *slog.Logger) *PairReader {
	return &PairReader{client: client, logger: logger}
}

// Uniswap V2 pair storage layout:
//
//	slot 6: address token0
//	slot 7: address token1
//	slot 8: uint112 reserve0 | uint112 reserve1 | uint32 blockTimestampLast

// ReadPair loads the pair at addr at the latest block. ticker names the
// resulting market ("ETH/USDC"); decimals1 and decimals2 scale the raw
// integer reserves into token units.
func (r *PairReader) ReadPair(ctx context.Context, addr common.Address, ticker string, decimals1, decimals2 int32, swapFee float64) (*domain.MarketPair, error) {
	bn, err := r.client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}
	blockNum := new(big.Int).SetUint64(bn)

	word, err := r.readSlot(ctx, addr, blockNum, 8)
	if err != nil {
		return nil, err
	}
	reserve0, reserve1 := parseReserves(word)
	if reserve0.Sign() == 0 || reserve1.Sign() == 0 {
		return nil, ErrEmptyReserves
	}

	name1, name2, err := domain.SplitTicker(ticker)
	if err != nil {
		return nil, err
	}

	bal1 := scaleReserve(reserve0, decimals1)
	bal2 := scaleReserve(reserve1, decimals2)
	r.logger.Debug("pair reserves loaded",
		"pair", addr.Hex(), "block", bn, "reserve0", bal1, "reserve1", bal2)

	pool1, err := domain.NewPool(name1, bal1)
	if err != nil {
		return nil, err
	}
	pool2, err := domain.NewPool(name2, bal2)
	if err != nil {
		return nil, err
	}
	return domain.NewMarketPair(pool1, pool2, swapFee)
}

// Tokens reads token0 and token1 of the pair (slots 6 and 7).
func (r *PairReader) Tokens(ctx context.Context, addr common.Address) (common.Address, common.Address, error) {
	bn, err := r.client.BlockNumber(ctx)
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("block number: %w", err)
	}
	blockNum := new(big.Int).SetUint64(bn)

	b0, err := r.readSlot(ctx, addr, blockNum, 6)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	b1, err := r.readSlot(ctx, addr, blockNum, 7)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return common.BytesToAddress(b0), common.BytesToAddress(b1), nil
}

func (r *PairReader) readSlot(ctx context.Context, addr common.Address, blockNum *big.Int, slot uint64) ([]byte, error) {
	key := common.BigToHash(new(big.Int).SetUint64(slot))
	b, err := r.client.StorageAt(ctx, addr, key, blockNum)
	if err != nil {
		return nil, fmt.Errorf("storageAt slot %d (pair %s, block %s): %w",
			slot, addr.Hex(), blockNum.String(), err)
	}
	return b, nil
}

// parseReserves unpacks two uint112 reserves from the packed 32-byte
// storage word: [32 bits timestamp | 112 bits reserve1 | 112 bits reserve0],
// big-endian within the 256-bit word.
func parseReserves(b []byte) (reserve0, reserve1 *big.Int) {
	v := new(big.Int).SetBytes(b)
	one := big.NewInt(1)
	mask112 := new(big.Int).Sub(new(big.Int).Lsh(one, 112), one)

	reserve0 = new(big.Int).And(v, mask112)
	tmp := new(big.Int).Rsh(v, 112)
	reserve1 = new(big.Int).And(tmp, mask112)
	return
}

// scaleReserve converts a raw integer reserve to token units.
func scaleReserve(raw *big.Int, decimals int32) float64 {
	d := decimal.NewFromBigInt(raw, -decimals)
	f, _ := d.Float64()
	return f
}
