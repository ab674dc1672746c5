package usecase

import (
	"context"
	"math"
	"sort"

	"PortPulse/internal/domain/models"
	domrepo "PortPulse/internal/domain/repository"
)

// PerformanceUseCase derives trade statistics, portfolio risk, sector
// exposure and correlation risk from the store and the bar source.
type PerformanceUseCase struct {
	store domrepo.PositionStore
	bars  domrepo.BarSource
}

func NewPerformanceUseCase(store domrepo.PositionStore, bars domrepo.BarSource) *PerformanceUseCase {
	return &PerformanceUseCase{store: store, bars: bars}
}

// Stats aggregates the closed-trade history.
func (uc *PerformanceUseCase) Stats(ctx context.Context, limit int) (*models.PerformanceStats, error) {
	trades, err := uc.store.History(ctx, limit)
	if err != nil {
		return nil, err
	}
	return computeStats(trades), nil
}

func computeStats(trades []*models.TradeRecord) *models.PerformanceStats {
	st := &models.PerformanceStats{}
	if len(trades) == 0 {
		return st
	}

	var grossWin, grossLoss float64
	st.BestTrade = trades[0].PnL
	st.WorstTrade = trades[0].PnL
	for _, t := range trades {
		st.TotalTrades++
		st.TotalPnL += t.PnL
		if t.PnL > st.BestTrade {
			st.BestTrade = t.PnL
		}
		if t.PnL < st.WorstTrade {
			st.WorstTrade = t.PnL
		}
		if t.IsWin {
			st.Wins++
			grossWin += t.PnL
		} else {
			st.Losses++
			grossLoss += -t.PnL
		}
	}

	st.WinRate = float64(st.Wins) / float64(st.TotalTrades) * 100
	if st.Wins > 0 {
		st.AvgWin = grossWin / float64(st.Wins)
	}
	if st.Losses > 0 {
		st.AvgLoss = -grossLoss / float64(st.Losses)
	}
	if grossLoss > 0 {
		st.ProfitFactor = grossWin / grossLoss
	}
	st.Expectancy = st.TotalPnL / float64(st.TotalTrades)
	return st
}

// Risk summarizes stop-loss exposure across active positions.
func (uc *PerformanceUseCase) Risk(ctx context.Context) (*models.PortfolioRisk, error) {
	active, err := uc.store.List(ctx, models.StatusActive)
	if err != nil {
		return nil, err
	}
	return computeRisk(active), nil
}

func computeRisk(positions []*models.Position) *models.PortfolioRisk {
	pr := &models.PortfolioRisk{RiskRating: "LOW"}
	if len(positions) == 0 {
		return pr
	}

	var totalReward float64
	for _, p := range positions {
		exposure := p.EntryPrice * p.Quantity
		atRisk := (p.EntryPrice - p.StopLoss) * p.Quantity * p.Sign()
		if atRisk < 0 {
			atRisk = 0 // stop beyond entry locks in profit
		}
		reward := (p.Target1 - p.EntryPrice) * p.Quantity * p.Sign()
		if reward < 0 {
			reward = 0
		}

		risk := models.PositionRisk{
			Ticker: p.Ticker,
			AtRisk: atRisk,
			Reward: reward,
		}
		if atRisk > 0 {
			risk.RR = reward / atRisk
		}
		pr.Positions = append(pr.Positions, risk)
		pr.TotalAtRisk += atRisk
		pr.TotalExposure += exposure
		totalReward += reward
	}

	if pr.TotalExposure > 0 {
		pr.TotalAtRiskPct = pr.TotalAtRisk / pr.TotalExposure * 100
		for i := range pr.Positions {
			pr.Positions[i].AtRiskPct = pr.Positions[i].AtRisk / pr.TotalExposure * 100
		}
	}
	if pr.TotalAtRisk > 0 {
		pr.RewardRiskRatio = totalReward / pr.TotalAtRisk
	}
	pr.RiskRating = riskRating(pr.TotalAtRiskPct)
	return pr
}

func riskRating(atRiskPct float64) string {
	switch {
	case atRiskPct > 10:
		return "HIGH"
	case atRiskPct > 5:
		return "MODERATE"
	default:
		return "LOW"
	}
}

// SectorExposure groups active position exposure by sector, largest first.
func (uc *PerformanceUseCase) SectorExposure(ctx context.Context) ([]models.SectorExposure, error) {
	active, err := uc.store.List(ctx, models.StatusActive)
	if err != nil {
		return nil, err
	}
	return computeSectors(active), nil
}

func computeSectors(positions []*models.Position) []models.SectorExposure {
	byName := map[string]*models.SectorExposure{}
	var total float64
	for _, p := range positions {
		sector := p.Sector
		if sector == "" {
			sector = "UNCLASSIFIED"
		}
		exposure := p.EntryPrice * p.Quantity
		total += exposure
		e, ok := byName[sector]
		if !ok {
			e = &models.SectorExposure{Sector: sector}
			byName[sector] = e
		}
		e.Exposure += exposure
		e.Positions++
	}

	out := make([]models.SectorExposure, 0, len(byName))
	for _, e := range byName {
		if total > 0 {
			e.SharePct = e.Exposure / total * 100
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Exposure > out[j].Exposure })
	return out
}

// Pairwise correlation above this counts toward the concentration level.
const highCorrelation = 0.7

// Roughly three months of daily bars.
const correlationLookback = 63

// Caps the number of series fetched per call.
const correlationMaxTickers = 10

// CorrelationRisk fetches ~3 months of daily closes for the held tickers
// and flags pairs whose returns correlate above 0.7. Tickers whose series
// cannot be fetched are skipped; fewer than two usable series means LOW.
func (uc *PerformanceUseCase) CorrelationRisk(ctx context.Context) (*models.CorrelationRisk, error) {
	active, err := uc.store.List(ctx, models.StatusActive)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	tickers := make([]string, 0, len(active))
	for _, p := range active {
		if !seen[p.Ticker] {
			seen[p.Ticker] = true
			tickers = append(tickers, p.Ticker)
		}
		if len(tickers) == correlationMaxTickers {
			break
		}
	}

	returns := map[string][]float64{}
	for _, t := range tickers {
		bars, err := uc.bars.FetchSeries(ctx, t, correlationLookback)
		if err != nil {
			continue
		}
		if r := dailyReturns(bars); len(r) > 1 {
			returns[t] = r
		}
	}
	return correlationRisk(tickers, returns), nil
}

func dailyReturns(bars []models.PriceBar) []float64 {
	out := make([]float64, 0, len(bars))
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		out = append(out, (bars[i].Close-prev)/prev)
	}
	return out
}

// pearson correlates the overlapping tails of two return series. Returns 0
// when either series is flat.
func pearson(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return 0
	}
	a = a[len(a)-n:]
	b = b[len(b)-n:]

	var sumA, sumB float64
	for i := 0; i < n; i++ {
		sumA += a[i]
		sumB += b[i]
	}
	meanA, meanB := sumA/float64(n), sumB/float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

func correlationRisk(tickers []string, returns map[string][]float64) *models.CorrelationRisk {
	cr := &models.CorrelationRisk{Level: "LOW"}
	for i := 0; i < len(tickers); i++ {
		ra, ok := returns[tickers[i]]
		if !ok {
			continue
		}
		for j := i + 1; j < len(tickers); j++ {
			rb, ok := returns[tickers[j]]
			if !ok {
				continue
			}
			if r := pearson(ra, rb); math.Abs(r) > highCorrelation {
				cr.Pairs = append(cr.Pairs, models.CorrelatedPair{
					TickerA:     tickers[i],
					TickerB:     tickers[j],
					Correlation: r,
				})
			}
		}
	}

	switch n := len(cr.Pairs); {
	case n > 3:
		cr.Level = "HIGH"
		cr.Warning = "highly correlated positions detected, diversify"
	case n > 1:
		cr.Level = "MEDIUM"
		cr.Warning = "correlated positions, monitor closely"
	}
	return cr
}
