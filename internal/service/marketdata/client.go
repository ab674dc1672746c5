package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"PortPulse/internal/domain/models"
	drepo "PortPulse/internal/domain/repository"
	svccache "PortPulse/internal/service/cache"
	"PortPulse/internal/service/ratelimit"
	"PortPulse/pkg/util"
	applogger "PortPulse/pkg/logger"

	"github.com/go-resty/resty/v2"
)

// ErrRateLimited is returned when the upstream budget is exhausted and no
// cached series exists to fall back on.
var ErrRateLimited = errors.New("marketdata: rate limited")

const (
	limiterKey = "marketdata"
	// staleTTL keeps a fallback copy long enough to ride out an upstream
	// outage or rate-limit burst within a refresh cycle.
	staleTTL = time.Hour
)

// Client fetches OHLCV history over REST. Series are memoized in a TTL
// cache; when the rate limiter or the upstream rejects a call, a stale
// cached series is served instead of failing the ticker.
type Client struct {
	http    *resty.Client
	cache   svccache.BytesCache
	limiter *ratelimit.Limiter
	logger  *applogger.Logger
	metrics drepo.Metrics

	ttl          time.Duration
	rateCapacity float64
	ratePerSec   float64
}

// Option configures the Client.
type Option func(*Client)

func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

func WithRateLimit(capacity, perSec float64) Option {
	return func(c *Client) {
		c.rateCapacity = capacity
		c.ratePerSec = perSec
	}
}

func WithMetrics(m drepo.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New builds a Client against baseURL. The token is sent as a bearer
// header on every request.
func New(baseURL, token string, timeout time.Duration, cache svccache.BytesCache, logger *applogger.Logger, opts ...Option) *Client {
	httpc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)
	if token != "" {
		httpc.SetAuthToken(token)
	}

	c := &Client{
		http:         httpc,
		cache:        cache,
		limiter:      ratelimit.New(),
		logger:       logger,
		ttl:          time.Minute,
		rateCapacity: 30,
		ratePerSec:   0.5,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type barPayload struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

type seriesResponse struct {
	Ticker string       `json:"ticker"`
	Bars   []barPayload `json:"bars"`
}

type quoteResponse struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`
}

// FetchSeries returns up to lookback daily bars for ticker, oldest first.
// Partial upstream history is returned as-is; the caller treats a short
// series as "indicators undefined".
func (c *Client) FetchSeries(ctx context.Context, ticker string, lookback int) ([]models.PriceBar, error) {
	key := fmt.Sprintf("bars:%s:%d", ticker, lookback)

	if bars, ok := c.cached(key); ok {
		c.recordFetch(true)
		return bars, nil
	}
	c.recordFetch(false)

	if !c.limiter.Allow(limiterKey, c.rateCapacity, c.ratePerSec) {
		if bars, ok := c.cached("stale:" + key); ok {
			c.logger.Warn("serving stale series, rate limited",
				applogger.String("ticker", ticker))
			return bars, nil
		}
		return nil, ErrRateLimited
	}

	bars, err := c.fetch(ctx, ticker, lookback)
	if err != nil {
		if stale, ok := c.cached("stale:" + key); ok {
			c.logger.Warn("serving stale series, fetch failed",
				applogger.String("ticker", ticker),
				applogger.Error(err))
			return stale, nil
		}
		return nil, err
	}

	c.store(key, bars, c.ttl)
	c.store("stale:"+key, bars, staleTTL)
	return bars, nil
}

// LatestQuote returns the last trade price for ticker.
func (c *Client) LatestQuote(ctx context.Context, ticker string) (float64, error) {
	if !c.limiter.Allow(limiterKey, c.rateCapacity, c.ratePerSec) {
		return 0, ErrRateLimited
	}
	var out quoteResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("ticker", ticker).
		SetResult(&out).
		Get("/v1/quote")
	if err != nil {
		return 0, fmt.Errorf("quote %s: %w", ticker, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("quote %s: upstream status %d", ticker, resp.StatusCode())
	}
	if out.Price <= 0 {
		return 0, fmt.Errorf("quote %s: empty price", ticker)
	}
	return out.Price, nil
}

func (c *Client) fetch(ctx context.Context, ticker string, lookback int) ([]models.PriceBar, error) {
	var out seriesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("ticker", ticker).
		SetQueryParam("days", fmt.Sprintf("%d", lookback)).
		SetResult(&out).
		Get("/v1/daily")
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: upstream status %d", ticker, resp.StatusCode())
	}
	if len(out.Bars) == 0 {
		return nil, fmt.Errorf("fetch %s: no data", ticker)
	}

	bars := make([]models.PriceBar, 0, len(out.Bars))
	for _, p := range out.Bars {
		d, ok := util.ParseDay(p.Date)
		if !ok {
			continue
		}
		bars = append(bars, models.PriceBar{
			Date:   d,
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Close:  p.Close,
			Volume: p.Volume,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return dedupeDates(bars), nil
}

// dedupeDates drops repeated dates keeping the later record, preserving the
// no-duplicate-dates series invariant.
func dedupeDates(bars []models.PriceBar) []models.PriceBar {
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func (c *Client) cached(key string) ([]models.PriceBar, bool) {
	b, ok, err := c.cache.GetBytes(key)
	if err != nil || !ok {
		return nil, false
	}
	var bars []models.PriceBar
	if err := json.Unmarshal(b, &bars); err != nil {
		return nil, false
	}
	return bars, true
}

func (c *Client) store(key string, bars []models.PriceBar, ttl time.Duration) {
	b, err := json.Marshal(bars)
	if err != nil {
		return
	}
	_ = c.cache.SetBytes(key, b, ttl)
}

func (c *Client) recordFetch(hit bool) {
	if c.metrics != nil {
		c.metrics.RecordFetch("bars", hit)
	}
}

var _ drepo.BarSource = (*Client)(nil)
