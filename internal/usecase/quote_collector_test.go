package usecase

import (
	"context"
	"testing"
	"time"

	"PortPulse/internal/domain/models"
)

func TestLastPriceTable(t *testing.T) {
	tbl := NewLastPriceTable()
	if _, ok := tbl.Get("AAPL"); ok {
		t.Fatal("empty table should miss")
	}

	q := &models.Quote{Ticker: "AAPL", Price: 187.5, At: time.Now()}
	if err := tbl.Process(context.Background(), q); err != nil {
		t.Fatalf("process: %v", err)
	}
	got, ok := tbl.Get("AAPL")
	if !ok || got.Price != 187.5 {
		t.Fatalf("get = %+v/%v, want price 187.5", got, ok)
	}

	snap := tbl.Snapshot()
	if len(snap) != 1 || snap["AAPL"].Price != 187.5 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestConsumeStopsWhenStreamCloses(t *testing.T) {
	tbl := NewLastPriceTable()
	c := &QuoteCollector{table: tbl, metrics: stubMetrics{}}

	qCh := make(chan *models.Quote, 1)
	errCh := make(chan error)
	qCh <- &models.Quote{Ticker: "AAPL", Price: 190}

	done := make(chan struct{})
	go func() {
		c.consume(context.Background(), qCh, errCh)
		close(done)
	}()

	// Wait for the buffered quote to drain, then close as the stream
	// goroutine does on shutdown.
	deadline := time.After(2 * time.Second)
	for {
		if _, ok := tbl.Get("AAPL"); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("quote never consumed")
		case <-time.After(5 * time.Millisecond):
		}
	}
	close(qCh)
	close(errCh)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consume loop did not exit after channels closed")
	}
}

func TestConsumeStopsOnContextCancel(t *testing.T) {
	c := &QuoteCollector{table: NewLastPriceTable(), metrics: stubMetrics{}}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.consume(ctx, make(chan *models.Quote), make(chan error))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consume loop did not exit on cancellation")
	}
}
