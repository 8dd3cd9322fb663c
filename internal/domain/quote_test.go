package domain

import (
	"errors"
	"testing"
)

func TestSplitTicker(t *testing.T) {
	tests := []struct {
		name      string
		pair      string
		wantBase  string
		wantQuote string
		wantErr   bool
	}{
		{"simple pair", "ETH/USD", "ETH", "USD", false},
		{"single letter tokens", "A/B", "A", "B", false},
		{"no separator", "ETHUSD", "", "", true},
		{"two separators", "ETH/USD/EUR", "", "", true},
		{"empty string", "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, quote, err := SplitTicker(tt.pair)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTradingPair) {
					t.Fatalf("SplitTicker(%q) error = %v, want ErrInvalidTradingPair", tt.pair, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitTicker(%q) unexpected error: %v", tt.pair, err)
			}
			if base != tt.wantBase || quote != tt.wantQuote {
				t.Errorf("SplitTicker(%q) = (%q, %q), want (%q, %q)",
					tt.pair, base, quote, tt.wantBase, tt.wantQuote)
			}
		})
	}
}

func TestNewMarketQuote(t *testing.T) {
	q, err := NewMarketQuote("ETH/USD", 1800.5)
	if err != nil {
		t.Fatalf("NewMarketQuote() failed: %v", err)
	}
	if q.TokenBase != "ETH" || q.TokenQuote != "USD" {
		t.Errorf("parsed tokens = (%q, %q), want (ETH, USD)", q.TokenBase, q.TokenQuote)
	}
	if q.Ticker() != "ETH/USD" {
		t.Errorf("Ticker() = %q, want ETH/USD", q.Ticker())
	}
	if q.Price != 1800.5 {
		t.Errorf("Price = %v, want 1800.5", q.Price)
	}

	if _, err := NewMarketQuote("ETHUSD", 1800.5); !errors.Is(err, ErrInvalidTradingPair) {
		t.Errorf("NewMarketQuote(ETHUSD) error = %v, want ErrInvalidTradingPair", err)
	}
}
