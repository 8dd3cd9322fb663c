package handler

import (
	"errors"
	"log/slog"
	"math"

	"github.com/gofiber/fiber/v3"

	"github.com/lehajam/cpamm/internal/domain"
	"github.com/lehajam/cpamm/internal/engine"
)

// PairSource builds a fresh market pair for one pricing request. Requests
// never share pool state, so quoting a swap cannot affect later calls.
type PairSource func() (*domain.MarketPair, error)

// PricingHandler serves pool pricing queries: swap quotes, the reserve
// curve, order-book depth and price-impact ranges.
type PricingHandler struct {
	BaseHandler
	pair PairSource
}

func NewPricingHandler(logger *slog.Logger, pair PairSource) *PricingHandler {
	return &PricingHandler{
		BaseHandler: BaseHandler{logger: logger},
		pair:        pair,
	}
}

// Register mounts all pricing routes on app.
func (h *PricingHandler) Register(app *fiber.App) {
	app.Get("/quote", h.Quote())
	app.Get("/curve", h.Curve())
	app.Get("/orderbook", h.OrderBook())
	app.Get("/priceimpact", h.PriceImpact())
}

type quoteRequest struct {
	Size float64 `query:"size" json:"size"`
}

type quoteResponse struct {
	Side      domain.Side `json:"side"`
	TickerIn  string      `json:"ticker_in"`
	TickerOut string      `json:"ticker_out"`
	AmountOut float64     `json:"amount_out"`
	ExecPrice float64     `json:"exec_price"`
	MidPrice  float64     `json:"mid_price"`
	Fee       float64     `json:"fee"`
}

// Quote prices a signed swap: positive size swaps token 1 in, negative
// token 2.
func (h *PricingHandler) Quote() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req quoteRequest
		if err := c.Bind().Query(&req); err != nil {
			h.logger.Debug("failed to bind query parameters", "err", err)
			return ErrInvalidQueryParameters
		}
		if req.Size == 0 || math.IsNaN(req.Size) || math.IsInf(req.Size, 0) {
			return ErrSizeRequired
		}

		mkt, err := h.pair()
		if err != nil {
			return h.serviceError(err)
		}
		midBefore := mkt.MidPrice()

		order, err := domain.NewTradeOrder(mkt.Ticker(), req.Size, mkt.SwapFee)
		if err != nil {
			return h.serviceError(err)
		}
		dy, execPrice, err := engine.ExecuteOrder(mkt, order, engine.SwapOpts{})
		if err != nil {
			return h.serviceError(err)
		}

		h.logger.Debug("quote computed", "size", req.Size, "out", dy, "price", execPrice)
		return c.JSON(quoteResponse{
			Side:      order.Side,
			TickerIn:  order.TickerIn,
			TickerOut: order.TickerOut,
			AmountOut: dy,
			ExecPrice: execPrice,
			MidPrice:  midBefore,
			Fee:       order.CashTransactionFee,
		})
	}
}

type gridRequest struct {
	XMin float64 `query:"x_min" json:"x_min"`
	XMax float64 `query:"x_max" json:"x_max"`
	Num  int     `query:"num" json:"num"`
}

func (r *gridRequest) validate() error {
	if r.XMin < 0 || r.XMax < 0 || r.Num < 0 {
		return ErrInvalidGrid
	}
	if r.XMax != 0 && r.XMin >= r.XMax {
		return ErrInvalidGrid
	}
	return nil
}

type curveResponse struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// Curve samples the reserve hyperbola. Zero-valued grid parameters fall
// back to the engine defaults.
func (h *PricingHandler) Curve() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req gridRequest
		if err := c.Bind().Query(&req); err != nil {
			return ErrInvalidQueryParameters
		}
		if err := req.validate(); err != nil {
			return err
		}

		mkt, err := h.pair()
		if err != nil {
			return h.serviceError(err)
		}
		xs, ys := engine.ConstantProductCurve(mkt.Pool1, mkt.Pool2,
			engine.CurveOpts{XMin: req.XMin, XMax: req.XMax, Num: req.Num})
		return c.JSON(curveResponse{X: xs, Y: ys})
	}
}

type orderBookResponse struct {
	X        []float64 `json:"x"`
	MidPrice []float64 `json:"mid_price"`
	Quantity []float64 `json:"quantity"`
}

// OrderBook returns the synthetic depth chart of the pool.
func (h *PricingHandler) OrderBook() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req gridRequest
		if err := c.Bind().Query(&req); err != nil {
			return ErrInvalidQueryParameters
		}
		if err := req.validate(); err != nil {
			return err
		}

		mkt, err := h.pair()
		if err != nil {
			return h.serviceError(err)
		}
		xs, mids, quantities := engine.OrderBook(mkt.Pool1, mkt.Pool2,
			engine.CurveOpts{XMin: req.XMin, XMax: req.XMax, Num: req.Num})
		return c.JSON(orderBookResponse{X: xs, MidPrice: mids, Quantity: quantities})
	}
}

type impactRequest struct {
	Size float64 `query:"size" json:"size"`
}

// PriceImpact returns the start/mid/end points of a prospective swap of
// the given size of token 1.
func (h *PricingHandler) PriceImpact() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req impactRequest
		if err := c.Bind().Query(&req); err != nil {
			return ErrInvalidQueryParameters
		}
		if req.Size < 0 || math.IsNaN(req.Size) || math.IsInf(req.Size, 0) {
			return ErrSizeNonPositive
		}

		mkt, err := h.pair()
		if err != nil {
			return h.serviceError(err)
		}
		r, err := engine.PriceImpact(mkt.Pool1, mkt.Pool2, engine.ImpactOpts{Dx: req.Size})
		if err != nil {
			return h.serviceError(err)
		}
		return c.JSON(r)
	}
}

func (h *PricingHandler) serviceError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidOrder),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidTradingPair),
		errors.Is(err, domain.ErrUnknownTradingPair):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error("pricing failed", "err", err)
		return ErrPricingFailedInternal
	}
}
