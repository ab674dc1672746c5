package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cycles        prometheus.Counter
	cyclePos      prometheus.Gauge
	cycleDuration prometheus.Histogram
	tickerEval    *prometheus.HistogramVec
	fetches       *prometheus.CounterVec
	alerts        *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cycles: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "portpulse_evaluation_cycles_total",
				Help: "Total number of completed evaluation cycles",
			},
		),
		cyclePos: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "portpulse_evaluated_positions",
				Help: "Positions evaluated in the last cycle",
			},
		),
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "portpulse_cycle_duration_seconds",
				Help:    "Duration of a full evaluation cycle in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		tickerEval: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portpulse_ticker_eval_duration_seconds",
				Help:    "Duration of one ticker evaluation in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"ticker"},
		),
		fetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portpulse_fetches_total",
				Help: "Market data fetches by kind and cache result",
			},
			[]string{"kind", "result"},
		),
		alerts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portpulse_alerts_total",
				Help: "Alerts published by kind",
			},
			[]string{"kind"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "portpulse_last_price",
				Help: "Last recorded price for a ticker",
			},
			[]string{"ticker"},
		),
	}
}

// RecordCycle records one completed evaluation cycle.
func (r *Recorder) RecordCycle(positions int, seconds float64) {
	r.cycles.Inc()
	r.cyclePos.Set(float64(positions))
	r.cycleDuration.Observe(seconds)
}

// RecordTickerEval records one ticker's evaluation latency.
func (r *Recorder) RecordTickerEval(ticker string, seconds float64) {
	r.tickerEval.WithLabelValues(ticker).Observe(seconds)
}

// RecordFetch records a market data fetch and whether the cache served it.
func (r *Recorder) RecordFetch(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.fetches.WithLabelValues(kind, result).Inc()
}

// RecordAlert records a published alert.
func (r *Recorder) RecordAlert(kind string) {
	r.alerts.WithLabelValues(kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a ticker.
func (r *Recorder) RecordLastPrice(ticker string, price float64) {
	r.lastPrice.WithLabelValues(ticker).Set(price)
}
