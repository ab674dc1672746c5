package usecase

import (
	"context"
	"sync"

	"PortPulse/internal/domain/models"
	drepo "PortPulse/internal/domain/repository"
	mid "PortPulse/internal/middleware"
)

// LastPriceTable holds the freshest streamed price per ticker. Display-only
// between refresh cycles; the indicator pipeline never reads it.
type LastPriceTable struct {
	mu sync.RWMutex
	m  map[string]models.Quote
}

func NewLastPriceTable() *LastPriceTable {
	return &LastPriceTable{m: make(map[string]models.Quote)}
}

// Process records the quote. Satisfies middleware.Proc.
func (t *LastPriceTable) Process(_ context.Context, q *models.Quote) error {
	t.mu.Lock()
	t.m[q.Ticker] = *q
	t.mu.Unlock()
	return nil
}

// Get returns the last quote for a ticker if one has streamed in.
func (t *LastPriceTable) Get(ticker string) (models.Quote, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	q, ok := t.m[ticker]
	return q, ok
}

// Snapshot returns a copy of the table.
func (t *LastPriceTable) Snapshot() map[string]models.Quote {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]models.Quote, len(t.m))
	for k, v := range t.m {
		out[k] = v
	}
	return out
}

// QuoteCollector consumes the live quote stream through the pipeline into
// the last-price table, resubscribing to the active position tickers.
type QuoteCollector struct {
	stream  drepo.QuoteStream
	store   drepo.PositionStore
	table   *LastPriceTable
	metrics drepo.Metrics
	pipe    *mid.QuotePipeline
}

// NewQuoteCollector creates a new QuoteCollector instance.
func NewQuoteCollector(stream drepo.QuoteStream, store drepo.PositionStore, table *LastPriceTable, metrics drepo.Metrics, pipe *mid.QuotePipeline) *QuoteCollector {
	return &QuoteCollector{stream: stream, store: store, table: table, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the quote stream is connected.
func (c *QuoteCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects, subscribes to the active tickers and launches the
// consume loop.
func (c *QuoteCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	tickers, err := c.activeTickers(ctx)
	if err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx, tickers); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	qCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, qCh, errCh)
	return nil
}

func (c *QuoteCollector) activeTickers(ctx context.Context) ([]string, error) {
	positions, err := c.store.List(ctx, models.StatusActive)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(positions))
	var out []string
	for _, p := range positions {
		if _, ok := seen[p.Ticker]; ok {
			continue
		}
		seen[p.Ticker] = struct{}{}
		out = append(out, p.Ticker)
	}
	return out, nil
}

func (c *QuoteCollector) consume(ctx context.Context, qCh <-chan *models.Quote, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				// Stream goroutine shut down and closed its channels.
				return
			}
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
				qCh, errCh = c.stream.Read(ctx)
			}
		case q, ok := <-qCh:
			if !ok {
				return
			}
			if q == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, q)
			} else {
				_ = c.table.Process(ctx, q)
			}
			c.metrics.RecordLastPrice(q.Ticker, q.Price)
		}
	}
}

// Shutdown stops the pipeline and closes the stream.
func (c *QuoteCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}

// Table exposes the last-price table for handlers.
func (c *QuoteCollector) Table() *LastPriceTable { return c.table }
