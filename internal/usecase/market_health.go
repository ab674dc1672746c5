package usecase

import (
	"context"
	"time"

	"PortPulse/internal/domain/models"
	domrepo "PortPulse/internal/domain/repository"
	domsvc "PortPulse/internal/domain/service"
	svccache "PortPulse/internal/service/cache"
	applogger "PortPulse/pkg/logger"
)

const healthCacheKey = "market:health"

// MarketHealthUseCase computes the benchmark + volatility health score,
// memoized with a short TTL so a refresh burst hits the upstream once.
type MarketHealthUseCase struct {
	bars        domrepo.BarSource
	scorer      domsvc.MarketScorer
	cache       *svccache.TTLCache
	logger      *applogger.Logger
	indexTicker string
	volTicker   string
	ttl         time.Duration
}

func NewMarketHealthUseCase(bars domrepo.BarSource, scorer domsvc.MarketScorer, indexTicker, volTicker string, ttl time.Duration, logger *applogger.Logger) *MarketHealthUseCase {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MarketHealthUseCase{
		bars:        bars,
		scorer:      scorer,
		cache:       svccache.NewTTLCache(),
		logger:      logger,
		indexTicker: indexTicker,
		volTicker:   volTicker,
		ttl:         ttl,
	}
}

// Health returns the current market health, from cache when fresh.
func (uc *MarketHealthUseCase) Health(ctx context.Context) (*models.MarketHealth, error) {
	if v, ok := uc.cache.Get(healthCacheKey); ok {
		if h, ok2 := v.(*models.MarketHealth); ok2 {
			return h, nil
		}
	}

	index, err := uc.bars.FetchSeries(ctx, uc.indexTicker, lookbackBars)
	if err != nil {
		return nil, err
	}
	// Volatility data is optional: health degrades to benchmark-only.
	var vol []models.PriceBar
	if uc.volTicker != "" {
		vol, err = uc.bars.FetchSeries(ctx, uc.volTicker, 5)
		if err != nil {
			uc.logger.Warn("volatility index unavailable",
				applogger.String("ticker", uc.volTicker),
				applogger.Error(err),
			)
			vol = nil
		}
	}

	h := uc.scorer.Health(index, vol)
	uc.cache.Set(healthCacheKey, h, uc.ttl)
	return h, nil
}
