package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/lehajam/cpamm/internal/sim"
)

const binanceWSURL = "wss://stream.binance.com:9443/ws"

// aggTradeMsg is the Binance aggTrade stream payload. Prices and
// quantities arrive as decimal strings.
type aggTradeMsg struct {
	EventType    string `json:"e"`
	TradeTime    int64  `json:"T"`
	Price        string `json:"p"`
	Quantity     string `json:"q"`
	IsBuyerMaker bool   `json:"m"`
}

type subscribeMsg struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

// BinanceTradeStream turns the Binance aggTrade stream for one symbol
// into signed trade events. Buyer-maker trades are market sells and
// carry a negative quantity.
type BinanceTradeStream struct {
	worker *WSWorker
	symbol string
	out    chan<- sim.TradeEvent
	logger *slog.Logger
	url    string
}

// NewBinanceTradeStream subscribes to symbol (exchange form, e.g.
// "ETHBTC") and delivers events on out. Events are dropped, not
// buffered, when the consumer falls behind.
func NewBinanceTradeStream(symbol string, out chan<- sim.TradeEvent, logger *slog.Logger) *BinanceTradeStream {
	s := &BinanceTradeStream{
		symbol: strings.ToUpper(symbol),
		out:    out,
		logger: logger,
		url:    binanceWSURL,
	}
	s.worker = NewWSWorker(s, logger)
	return s
}

func (s *BinanceTradeStream) ID() string  { return "BINANCE_" + s.symbol }
func (s *BinanceTradeStream) URL() string { return s.url }

func (s *BinanceTradeStream) Start(ctx context.Context) { s.worker.Start(ctx) }
func (s *BinanceTradeStream) Stop()                     { s.worker.Stop() }

func (s *BinanceTradeStream) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	req := subscribeMsg{
		Method: "SUBSCRIBE",
		Params: []string{strings.ToLower(s.symbol) + "@aggTrade"},
		ID:     1,
	}
	b, _ := json.Marshal(req)
	return s.worker.Write(websocket.TextMessage, b)
}

func (s *BinanceTradeStream) OnMessage(ctx context.Context, msg []byte) {
	var m aggTradeMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return
	}
	if m.EventType != "aggTrade" {
		return
	}

	ev, err := s.parseTrade(&m)
	if err != nil {
		s.logger.Warn("feed trade dropped", "id", s.ID(), "err", err)
		return
	}

	select {
	case s.out <- ev:
	default:
		s.logger.Warn("feed consumer behind, trade dropped", "id", s.ID())
	}
}

func (s *BinanceTradeStream) OnPing(ctx context.Context, conn *websocket.Conn) error {
	// Binance pings the client; a control pong is enough to stay alive.
	return s.worker.Write(websocket.PongMessage, nil)
}

func (s *BinanceTradeStream) parseTrade(m *aggTradeMsg) (sim.TradeEvent, error) {
	price, err := decimal.NewFromString(m.Price)
	if err != nil {
		return sim.TradeEvent{}, err
	}
	qty, err := decimal.NewFromString(m.Quantity)
	if err != nil {
		return sim.TradeEvent{}, err
	}
	if m.IsBuyerMaker {
		qty = qty.Neg()
	}

	pf, _ := price.Float64()
	qf, _ := qty.Float64()
	return sim.TradeEvent{
		TradeDate: time.UnixMilli(m.TradeTime).UTC(),
		Price:     pf,
		Quantity:  qf,
	}, nil
}
