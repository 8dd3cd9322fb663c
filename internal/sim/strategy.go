package sim

import (
	"fmt"

	"github.com/lehajam/cpamm/internal/domain"
	"github.com/lehajam/cpamm/internal/engine"
)

// Strategy reacts to one feed event against the pair and returns the
// executions it performed, in order. The driver has already set the
// pair's market quote when OnTrade is called.
type Strategy interface {
	OnTrade(ev *TradeEvent, mkt *domain.MarketPair, opts engine.SwapOpts) ([]ExecRecord, error)
}

// UniV2 is the plain liquidity-provider strategy: optionally correct the
// pool towards the market quote, then pass the feed trade through.
type UniV2 struct {
	ArbEnabled bool
}

func (s UniV2) OnTrade(ev *TradeEvent, mkt *domain.MarketPair, opts engine.SwapOpts) ([]ExecRecord, error) {
	var records []ExecRecord

	if s.ArbEnabled {
		size, pnl := engine.CalcArbTrade(mkt)
		if pnl > 0 {
			rec, err := ExecuteTrade(mkt, ev.TradeDate, size, pnl, opts)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	}

	if ev.Quantity != 0 {
		rec, err := ExecuteTrade(mkt, ev.TradeDate, ev.Quantity, 0, opts)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// DivProtocol is UniV2 with a divergence-tax hook.
type DivProtocol struct {
	UniV2
}

func (s DivProtocol) OnTrade(ev *TradeEvent, mkt *domain.MarketPair, opts engine.SwapOpts) ([]ExecRecord, error) {
	records, err := s.UniV2.OnTrade(ev, mkt, opts)
	if err != nil {
		return nil, err
	}
	// TODO: apply the divergence tax to qualifying records once the tax
	// schedule is defined.
	return records, nil
}

// GetStrategy resolves a strategy by its configured name.
func GetStrategy(name string, arbEnabled bool) (Strategy, error) {
	switch name {
	case "uni_v2":
		return UniV2{ArbEnabled: arbEnabled}, nil
	case "div_protocol":
		return DivProtocol{UniV2{ArbEnabled: arbEnabled}}, nil
	default:
		return nil, fmt.Errorf("strategy %q not found", name)
	}
}
