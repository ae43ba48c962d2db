// Package stock keeps the live stock count of the product being viewed.
package stock

import (
	"context"
	stderrors "errors"
	"io"
	"sync"

	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/akhdanrgya/teluhub-client/thirdparty/stockgrpc"
	"github.com/akhdanrgya/teluhub-client/utils/logger"
	"github.com/akhdanrgya/teluhub-client/utils/metrics"
	"go.uber.org/zap"
)

// Streamer opens the server stream for one product.
type Streamer interface {
	TrackStock(ctx context.Context, productID uint64) (stockgrpc.Stream, error)
}

// EventPublisher receives every applied update. Optional.
type EventPublisher interface {
	PublishStockUpdate(ctx context.Context, update model.StockUpdate) error
}

type StockApp interface {
	// Open subscribes to productID. fallback is shown until the first update.
	// productID 0 returns an inert subscription.
	Open(ctx context.Context, productID uint64, fallback int64) *Subscription
}

type stockAppImpl struct {
	streamer  Streamer
	publisher EventPublisher
}

func NewStockApp(streamer Streamer, publisher EventPublisher) StockApp {
	return &stockAppImpl{streamer: streamer, publisher: publisher}
}

func (a *stockAppImpl) Open(ctx context.Context, productID uint64, fallback int64) *Subscription {
	sub := &Subscription{
		productID: productID,
		stock:     fallback,
		updates:   make(chan int64, 1),
		done:      make(chan struct{}),
	}

	if productID == 0 {
		sub.cancel = func() {}
		close(sub.updates)
		close(sub.done)
		return sub
	}

	streamCtx, cancel := context.WithCancel(ctx)
	sub.cancel = cancel

	metrics.StockStreamsActive.Inc()
	go a.run(streamCtx, sub)
	return sub
}

func (a *stockAppImpl) run(ctx context.Context, sub *Subscription) {
	defer func() {
		close(sub.updates)
		close(sub.done)
		metrics.StockStreamsActive.Dec()
	}()

	stream, err := a.streamer.TrackStock(ctx, sub.productID)
	if err != nil {
		sub.fail(ctx, err)
		return
	}

	logger.Debug("[stock.run] tracking", zap.Uint64("product_id", sub.productID))
	for {
		update, err := stream.Recv()
		if err != nil {
			sub.fail(ctx, err)
			return
		}
		if !sub.apply(update) {
			continue
		}
		metrics.StockUpdatesTotal.Inc()
		if a.publisher != nil {
			if err := a.publisher.PublishStockUpdate(ctx, *update); err != nil {
				logger.Warn("[stock.run] error publisher.PublishStockUpdate", zap.String("error", err.Error()))
			}
		}
	}
}

// Subscription is the handle of one open stock stream.
type Subscription struct {
	productID uint64
	cancel    context.CancelFunc
	closeOnce sync.Once
	updates   chan int64
	done      chan struct{}

	mu     sync.RWMutex
	stock  int64
	live   bool
	closed bool
	err    error
}

func (s *Subscription) ProductID() uint64 {
	return s.productID
}

// Stock is the latest streamed value, or the fallback before the first one.
func (s *Subscription) Stock() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stock
}

// Live reports whether at least one update has been applied.
func (s *Subscription) Live() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

// Err is the stream failure, nil while running, after a clean end or after Close.
func (s *Subscription) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Updates delivers new stock values. Only the latest undelivered value is
// kept. The channel is closed when the stream ends.
func (s *Subscription) Updates() <-chan int64 {
	return s.updates
}

// Done is closed once the stream goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close cancels the stream. Safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.cancel()
	})
}

func (s *Subscription) apply(update *model.StockUpdate) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if update.ProductID != 0 && update.ProductID != s.productID {
		s.mu.Unlock()
		logger.Warn("[stock.apply] update for another product ignored",
			zap.Uint64("product_id", s.productID),
			zap.Uint64("got_product_id", update.ProductID),
		)
		return false
	}
	s.stock = update.NewStock
	s.live = true

	// single producer: after the drain the send cannot block
	select {
	case <-s.updates:
	default:
	}
	s.updates <- update.NewStock
	s.mu.Unlock()
	return true
}

func (s *Subscription) fail(ctx context.Context, err error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	switch {
	case closed || ctx.Err() != nil:
		logger.Debug("[stock.run] stream closed", zap.Uint64("product_id", s.productID))
	case stderrors.Is(err, io.EOF):
		logger.Info("[stock.run] stream ended", zap.Uint64("product_id", s.productID))
	default:
		logger.Error("[stock.run] stream error", zap.Uint64("product_id", s.productID), zap.String("error", err.Error()))
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
	}
}

// Watcher holds at most one open subscription, like a mounted product view.
type Watcher struct {
	app StockApp

	mu      sync.Mutex
	current *Subscription
}

func NewWatcher(app StockApp) *Watcher {
	return &Watcher{app: app}
}

// Track closes the previous subscription before opening the next one.
func (w *Watcher) Track(ctx context.Context, productID uint64, fallback int64) *Subscription {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current != nil {
		w.current.Close()
	}
	w.current = w.app.Open(ctx, productID, fallback)
	return w.current
}

func (w *Watcher) Current() *Subscription {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current != nil {
		w.current.Close()
		w.current = nil
	}
}
