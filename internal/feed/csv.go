// Package feed loads trade events for the simulator, either from CSV
// exports or from a live exchange stream.
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lehajam/cpamm/internal/sim"
)

// csv column layout: trade_date,price,quantity
const csvFieldCount = 3

// LoadCSV parses a trade feed from r. The first row may be a header.
// Rows must be in non-decreasing trade_date order; the simulator relies
// on the feed being pre-sorted and never sorts it.
func LoadCSV(r io.Reader) ([]sim.TradeEvent, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = csvFieldCount

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if rows[0][0] == "trade_date" {
		rows = rows[1:]
	}

	events := make([]sim.TradeEvent, 0, len(rows))
	for i, row := range rows {
		ev, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+1, err)
		}
		if len(events) > 0 && ev.TradeDate.Before(events[len(events)-1].TradeDate) {
			return nil, fmt.Errorf("csv row %d: trade_date %s out of order", i+1, ev.TradeDate.Format(time.RFC3339))
		}
		events = append(events, ev)
	}
	return events, nil
}

// LoadCSVFile reads a trade feed from disk.
func LoadCSVFile(path string) ([]sim.TradeEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCSV(f)
}

func parseRow(row []string) (sim.TradeEvent, error) {
	ts, err := parseTradeDate(row[0])
	if err != nil {
		return sim.TradeEvent{}, err
	}

	// Exchange exports carry full-precision decimal strings; going through
	// decimal.Decimal rejects garbage that ParseFloat would silently accept
	// (empty exponents, stray whitespace handled inconsistently).
	price, err := decimal.NewFromString(row[1])
	if err != nil {
		return sim.TradeEvent{}, fmt.Errorf("price %q: %w", row[1], err)
	}
	if price.Sign() <= 0 {
		return sim.TradeEvent{}, fmt.Errorf("price %q: must be positive", row[1])
	}
	qty, err := decimal.NewFromString(row[2])
	if err != nil {
		return sim.TradeEvent{}, fmt.Errorf("quantity %q: %w", row[2], err)
	}

	pf, _ := price.Float64()
	qf, _ := qty.Float64()
	return sim.TradeEvent{TradeDate: ts, Price: pf, Quantity: qf}, nil
}

func parseTradeDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("trade_date %q: unrecognized format", s)
}
