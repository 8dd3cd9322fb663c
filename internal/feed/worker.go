package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// StreamHandler supplies the exchange-specific half of a websocket feed:
// where to connect, what to send on connect, and how to turn raw frames
// into trade events.
type StreamHandler interface {
	ID() string
	URL() string
	OnConnect(ctx context.Context, conn *websocket.Conn) error
	OnMessage(ctx context.Context, msg []byte)
	OnPing(ctx context.Context, conn *websocket.Conn) error
}

// WSWorker owns the connection lifecycle for a StreamHandler: reconnect
// with backoff, read deadlines, serialized writes.
type WSWorker struct {
	handler StreamHandler
	logger  *slog.Logger

	mu      sync.RWMutex
	conn    *websocket.Conn
	writeMu sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	ReadTimeout  time.Duration
	PingInterval time.Duration
}

func NewWSWorker(handler StreamHandler, logger *slog.Logger) *WSWorker {
	return &WSWorker{
		handler:      handler,
		logger:       logger,
		ReadTimeout:  60 * time.Second,
		PingInterval: 30 * time.Second,
	}
}

// Start launches the connection loop in the background.
func (w *WSWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.runLoop(ctx)
}

// Stop terminates the worker and waits for the loop to exit.
func (w *WSWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.close()
	w.wg.Wait()
}

func (w *WSWorker) runLoop(ctx context.Context) {
	defer w.wg.Done()
	retry := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			w.logger.Warn("feed connection failed",
				"id", w.handler.ID(), "err", err, "retry", retry)
			delay := reconnectDelay(retry)
			retry++

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retry = 0
		w.process(ctx)
	}
}

func (w *WSWorker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.handler.URL(), nil)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	if err := w.handler.OnConnect(ctx, conn); err != nil {
		w.close()
		return fmt.Errorf("subscribe: %w", err)
	}

	if w.PingInterval > 0 {
		go w.pingLoop(ctx)
	}

	w.logger.Info("feed connected", "id", w.handler.ID())
	return nil
}

func (w *WSWorker) process(ctx context.Context) {
	for {
		w.mu.RLock()
		c := w.conn
		w.mu.RUnlock()
		if c == nil {
			return
		}

		c.SetReadDeadline(time.Now().Add(w.ReadTimeout))
		_, msg, err := c.ReadMessage()
		if err != nil {
			w.logger.Warn("feed read error", "id", w.handler.ID(), "err", err)
			w.close()
			return
		}

		w.handler.OnMessage(ctx, msg)
	}
}

func (w *WSWorker) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(w.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.mu.RLock()
			c := w.conn
			w.mu.RUnlock()
			if c == nil {
				return
			}
			if err := w.handler.OnPing(ctx, c); err != nil {
				w.logger.Warn("feed ping error", "id", w.handler.ID(), "err", err)
				w.close()
				return
			}
		}
	}
}

// Write sends one frame; safe for concurrent use.
func (w *WSWorker) Write(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.RLock()
	c := w.conn
	w.mu.RUnlock()

	if c == nil {
		return fmt.Errorf("feed not connected")
	}
	return c.WriteMessage(msgType, data)
}

func (w *WSWorker) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}
