package logger

import (
	"context"
	"testing"
	"time"
)

type capturePublisher struct {
	batches chan []AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, _ string, payload interface{}) error {
	if logs, ok := payload.([]AggregatedLogEntry); ok {
		p.batches <- logs
	}
	return nil
}

func TestCollectorDeduplicatesAndFlushes(t *testing.T) {
	pub := &capturePublisher{batches: make(chan []AggregatedLogEntry, 4)}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour, // flush only via threshold in this test
		CountThreshold: 2,
		Topic:          "logs",
		Publisher:      pub,
	})
	defer c.Close()

	fields := map[string]interface{}{"ticker": "AAPL"}
	c.AddLog("error", "fetch failed", fields, "client.go:42")
	c.AddLog("error", "fetch failed", fields, "client.go:42")
	c.AddLog("error", "archive failed", nil, "evaluate.go:210")

	select {
	case logs := <-pub.batches:
		if len(logs) != 2 {
			t.Fatalf("batch size = %d, want 2", len(logs))
		}
		counts := map[string]int{}
		for _, e := range logs {
			counts[e.Message] = e.Count
		}
		if counts["fetch failed"] != 2 {
			t.Errorf("fetch failed count = %d, want 2", counts["fetch failed"])
		}
		if counts["archive failed"] != 1 {
			t.Errorf("archive failed count = %d, want 1", counts["archive failed"])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("threshold flush never reached the publisher")
	}
}

func TestCollectorFinalFlushOnClose(t *testing.T) {
	pub := &capturePublisher{batches: make(chan []AggregatedLogEntry, 4)}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 100,
		Topic:          "logs",
		Publisher:      pub,
	})

	c.AddLog("error", "lingering", nil, "app.go:1")
	c.Close()

	select {
	case logs := <-pub.batches:
		if len(logs) != 1 || logs[0].Message != "lingering" {
			t.Fatalf("final batch = %+v", logs)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("close did not flush the pending batch")
	}
}
