package service

import (
	"PortPulse/internal/domain/models"
)

// IndicatorEngine maps an OHLCV series to its latest indicator snapshot
// and volume classification. Pure and stateless.
type IndicatorEngine interface {
	Snapshot(bars []models.PriceBar) models.IndicatorSnapshot
	Volume(bars []models.PriceBar) models.VolumeSignal
}

// PatternDetector scans a series for chart patterns and clustered
// support/resistance levels.
type PatternDetector interface {
	Detect(bars []models.PriceBar) []models.Pattern
	Levels(bars []models.PriceBar, currentPrice float64) models.LevelSet
}

// PositionScorer combines a position with its indicator/pattern context and
// the current market health into a full analysis.
type PositionScorer interface {
	Score(in ScoreInput) *models.PositionAnalysis
}

// ScoreInput is everything the scorer needs for one position. Market may be
// nil when index data was unavailable; the scorer then skips the
// market-dependent emergency checks.
type ScoreInput struct {
	Position     *models.Position
	CurrentPrice float64
	DayHigh      float64
	DayLow       float64
	Indicators   models.IndicatorSnapshot
	Volume       models.VolumeSignal
	Patterns     []models.Pattern
	Levels       models.LevelSet
	Market       *models.MarketHealth
}

// MarketScorer reduces benchmark + volatility series to one health score.
type MarketScorer interface {
	Health(index []models.PriceBar, volatility []models.PriceBar) *models.MarketHealth
}
