package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/lehajam/cpamm/internal/domain"
	"github.com/lehajam/cpamm/internal/engine"
)

func TestGetStrategy(t *testing.T) {
	tests := []struct {
		name    string
		arb     bool
		wantErr bool
	}{
		{"uni_v2", true, false},
		{"uni_v2", false, false},
		{"div_protocol", true, false},
		{"martingale", false, true},
		{"", false, true},
	}
	for _, tt := range tests {
		s, err := GetStrategy(tt.name, tt.arb)
		if tt.wantErr {
			if err == nil {
				t.Errorf("GetStrategy(%q) succeeded, want error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("GetStrategy(%q) failed: %v", tt.name, err)
			continue
		}
		if s == nil {
			t.Errorf("GetStrategy(%q) returned nil strategy", tt.name)
		}
	}
}

func TestDivProtocol_MatchesUniV2(t *testing.T) {
	events := []TradeEvent{
		{TradeDate: simDate(1), Price: 12, Quantity: 5},
		{TradeDate: simDate(2), Price: 11, Quantity: -0.5},
	}

	base := newSimPair(t, 100, 10, 0.003)
	baseRes, err := NewSimulator(base, UniV2{ArbEnabled: true}, 0).Run(context.Background(), events)
	if err != nil {
		t.Fatalf("UniV2 run failed: %v", err)
	}

	div := newSimPair(t, 100, 10, 0.003)
	divRes, err := NewSimulator(div, DivProtocol{UniV2{ArbEnabled: true}}, 0).Run(context.Background(), events)
	if err != nil {
		t.Fatalf("DivProtocol run failed: %v", err)
	}

	if len(divRes.Records) != len(baseRes.Records) {
		t.Fatalf("record counts differ: %d vs %d", len(divRes.Records), len(baseRes.Records))
	}
	for i := range divRes.Records {
		if divRes.Records[i].Price != baseRes.Records[i].Price {
			t.Errorf("record %d price differs: %v vs %v",
				i, divRes.Records[i].Price, baseRes.Records[i].Price)
		}
	}
}

func TestUniV2_PropagatesExecutionError(t *testing.T) {
	mkt := newSimPair(t, 100, 10, 0)
	ev := &TradeEvent{TradeDate: simDate(1), Price: 10, Quantity: math.Inf(1)}
	_, err := UniV2{}.OnTrade(ev, mkt, engine.SwapOpts{})
	if !errors.Is(err, domain.ErrInvalidOrder) {
		t.Fatalf("OnTrade() error = %v, want ErrInvalidOrder", err)
	}
	if len(mkt.Pool1.Reserves) != 1 {
		t.Error("failed trade mutated pool state")
	}
}
