package sim

import "github.com/lehajam/cpamm/internal/domain"

// SideSummary aggregates the executions of one trade side.
type SideSummary struct {
	Count     int     `json:"count"`
	VolumeIn  float64 `json:"volume_in"`
	VolumeOut float64 `json:"volume_out"`
	AvgPrice  float64 `json:"avg_price"`
}

// Summary is the headline view of a simulation run.
type Summary struct {
	Buy            SideSummary `json:"buy"`
	Sell           SideSummary `json:"sell"`
	TotalVolume1   float64     `json:"total_volume_1"`
	TotalVolume2   float64     `json:"total_volume_2"`
	TotalFees1     float64     `json:"total_fees_1"`
	TotalFees2     float64     `json:"total_fees_2"`
	TotalArbProfit float64     `json:"total_arb_profit"`
}

// Results bundles the full execution trail with its summary. Plain
// structured data: rendering and resampling belong to reporting
// collaborators.
type Results struct {
	Records []ExecRecord `json:"records"`
	Summary Summary      `json:"summary"`
}

// BuildResults derives the per-side summary and running totals from an
// ordered sequence of execution records.
func BuildResults(records []ExecRecord) *Results {
	res := &Results{Records: records}

	for i := range records {
		r := &records[i]
		res.Summary.TotalArbProfit += r.ArbProfit
		switch r.Side {
		case domain.SideBuy:
			res.Summary.Buy.Count++
			res.Summary.Buy.VolumeIn += r.VolumeIn
			res.Summary.Buy.VolumeOut += r.VolumeOut
		case domain.SideSell:
			res.Summary.Sell.Count++
			res.Summary.Sell.VolumeIn += r.VolumeIn
			res.Summary.Sell.VolumeOut += r.VolumeOut
		}
	}

	// Volume-weighted average prices in pair orientation: buys swap
	// token 1 in and token 2 out, sells the reverse.
	if res.Summary.Buy.VolumeOut > 0 {
		res.Summary.Buy.AvgPrice = res.Summary.Buy.VolumeIn / res.Summary.Buy.VolumeOut
	}
	if res.Summary.Sell.VolumeIn > 0 {
		res.Summary.Sell.AvgPrice = res.Summary.Sell.VolumeOut / res.Summary.Sell.VolumeIn
	}

	// Cumulative pair-level totals live in the last snapshot.
	if n := len(records); n > 0 {
		last := records[n-1].Snapshot
		res.Summary.TotalVolume1 = last.TotalVolume1
		res.Summary.TotalVolume2 = last.TotalVolume2
		res.Summary.TotalFees1 = last.TotalFees1
		res.Summary.TotalFees2 = last.TotalFees2
	}

	return res
}
