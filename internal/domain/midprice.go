package domain

// MidPrice bundles a point (x, y) on the reserve curve with the
// instantaneous exchange rate x/y at that point.
type MidPrice struct {
	XTicker string  `json:"x_ticker"`
	YTicker string  `json:"y_ticker"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Price   float64 `json:"price"`
}

// NewMidPrice builds a MidPrice from a pair ticker and reserves.
func NewMidPrice(tradingPair string, x, y float64) (MidPrice, error) {
	xTicker, yTicker, err := SplitTicker(tradingPair)
	if err != nil {
		return MidPrice{}, err
	}
	if x <= 0 || y <= 0 {
		return MidPrice{}, ErrInvalidAmount
	}
	return MidPrice{
		XTicker: xTicker,
		YTicker: yTicker,
		X:       x,
		Y:       y,
		Price:   x / y,
	}, nil
}

// PriceImpactRange describes how a swap moves the mid price: Start is the
// pre-trade point, End the post-trade point, and Mid the point on the curve
// where the instantaneous price equals the trade's average execution price.
type PriceImpactRange struct {
	Start MidPrice `json:"start"`
	Mid   MidPrice `json:"mid"`
	End   MidPrice `json:"end"`
}
