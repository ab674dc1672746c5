package usecase

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"PortPulse/internal/domain/models"
	internalrepo "PortPulse/internal/repository"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeStatsEmpty(t *testing.T) {
	st := computeStats(nil)
	if st.TotalTrades != 0 || st.WinRate != 0 || st.ProfitFactor != 0 {
		t.Fatalf("empty history should yield zero stats, got %+v", st)
	}
}

func TestComputeStats(t *testing.T) {
	trades := []*models.TradeRecord{
		{PnL: 100, IsWin: true},
		{PnL: 300, IsWin: true},
		{PnL: -50, IsWin: false},
		{PnL: -150, IsWin: false},
	}
	st := computeStats(trades)

	if st.TotalTrades != 4 || st.Wins != 2 || st.Losses != 2 {
		t.Fatalf("counts = %d/%d/%d", st.TotalTrades, st.Wins, st.Losses)
	}
	if !approx(st.WinRate, 50) {
		t.Errorf("WinRate = %v, want 50", st.WinRate)
	}
	if !approx(st.TotalPnL, 200) {
		t.Errorf("TotalPnL = %v, want 200", st.TotalPnL)
	}
	if !approx(st.AvgWin, 200) {
		t.Errorf("AvgWin = %v, want 200", st.AvgWin)
	}
	if !approx(st.AvgLoss, -100) {
		t.Errorf("AvgLoss = %v, want -100", st.AvgLoss)
	}
	if !approx(st.ProfitFactor, 2) {
		t.Errorf("ProfitFactor = %v, want 2", st.ProfitFactor)
	}
	if !approx(st.Expectancy, 50) {
		t.Errorf("Expectancy = %v, want 50", st.Expectancy)
	}
	if !approx(st.BestTrade, 300) || !approx(st.WorstTrade, -150) {
		t.Errorf("best/worst = %v/%v", st.BestTrade, st.WorstTrade)
	}
}

func TestComputeStatsAllWins(t *testing.T) {
	st := computeStats([]*models.TradeRecord{{PnL: 10, IsWin: true}})
	if st.ProfitFactor != 0 {
		t.Errorf("ProfitFactor with no losses = %v, want 0", st.ProfitFactor)
	}
	if st.AvgLoss != 0 {
		t.Errorf("AvgLoss with no losses = %v, want 0", st.AvgLoss)
	}
}

func TestComputeRiskEmpty(t *testing.T) {
	pr := computeRisk(nil)
	if pr.RiskRating != "LOW" || len(pr.Positions) != 0 {
		t.Fatalf("empty portfolio risk = %+v", pr)
	}
}

func TestComputeRiskLong(t *testing.T) {
	pr := computeRisk([]*models.Position{
		{Ticker: "AAPL", Direction: models.DirectionLong, EntryPrice: 100, Quantity: 10, StopLoss: 95, Target1: 110},
	})
	if len(pr.Positions) != 1 {
		t.Fatalf("positions = %d", len(pr.Positions))
	}
	p := pr.Positions[0]
	if !approx(p.AtRisk, 50) {
		t.Errorf("AtRisk = %v, want 50", p.AtRisk)
	}
	if !approx(p.Reward, 100) {
		t.Errorf("Reward = %v, want 100", p.Reward)
	}
	if !approx(p.RR, 2) {
		t.Errorf("RR = %v, want 2", p.RR)
	}
	if !approx(pr.TotalExposure, 1000) {
		t.Errorf("TotalExposure = %v, want 1000", pr.TotalExposure)
	}
	if !approx(pr.TotalAtRiskPct, 5) {
		t.Errorf("TotalAtRiskPct = %v, want 5", pr.TotalAtRiskPct)
	}
	if pr.RiskRating != "LOW" {
		t.Errorf("RiskRating = %q, want LOW", pr.RiskRating)
	}
}

func TestComputeRiskShort(t *testing.T) {
	pr := computeRisk([]*models.Position{
		{Ticker: "TSLA", Direction: models.DirectionShort, EntryPrice: 100, Quantity: 10, StopLoss: 106, Target1: 88},
	})
	p := pr.Positions[0]
	if !approx(p.AtRisk, 60) {
		t.Errorf("short AtRisk = %v, want 60", p.AtRisk)
	}
	if !approx(p.Reward, 120) {
		t.Errorf("short Reward = %v, want 120", p.Reward)
	}
}

func TestComputeRiskProfitLockedStop(t *testing.T) {
	// stop above entry on a long: nothing left at risk
	pr := computeRisk([]*models.Position{
		{Ticker: "MSFT", Direction: models.DirectionLong, EntryPrice: 100, Quantity: 10, StopLoss: 105, Target1: 120},
	})
	if pr.Positions[0].AtRisk != 0 {
		t.Errorf("AtRisk = %v, want 0", pr.Positions[0].AtRisk)
	}
	if pr.Positions[0].RR != 0 {
		t.Errorf("RR with zero risk = %v, want 0", pr.Positions[0].RR)
	}
	if pr.RewardRiskRatio != 0 {
		t.Errorf("RewardRiskRatio = %v, want 0", pr.RewardRiskRatio)
	}
}

func TestComputeRiskRatingBands(t *testing.T) {
	cases := []struct {
		stop float64
		want string
	}{
		{97, "LOW"},      // 3% at risk
		{93, "MODERATE"}, // 7%
		{85, "HIGH"},     // 15%
	}
	for _, tc := range cases {
		pr := computeRisk([]*models.Position{
			{Ticker: "X", Direction: models.DirectionLong, EntryPrice: 100, Quantity: 1, StopLoss: tc.stop, Target1: 110},
		})
		if pr.RiskRating != tc.want {
			t.Errorf("stop %v: rating = %q, want %q", tc.stop, pr.RiskRating, tc.want)
		}
	}
}

func TestComputeSectors(t *testing.T) {
	out := computeSectors([]*models.Position{
		{Ticker: "AAPL", Sector: "TECH", EntryPrice: 100, Quantity: 10},
		{Ticker: "MSFT", Sector: "TECH", EntryPrice: 200, Quantity: 10},
		{Ticker: "XOM", Sector: "ENERGY", EntryPrice: 100, Quantity: 10},
	})
	if len(out) != 2 {
		t.Fatalf("sectors = %d, want 2", len(out))
	}
	if out[0].Sector != "TECH" || out[0].Positions != 2 {
		t.Fatalf("largest sector = %+v", out[0])
	}
	if !approx(out[0].Exposure, 3000) || !approx(out[0].SharePct, 75) {
		t.Errorf("TECH exposure/share = %v/%v", out[0].Exposure, out[0].SharePct)
	}
	if !approx(out[1].SharePct, 25) {
		t.Errorf("ENERGY share = %v", out[1].SharePct)
	}
}

func TestComputeSectorsUnclassified(t *testing.T) {
	out := computeSectors([]*models.Position{
		{Ticker: "ZZZ", EntryPrice: 50, Quantity: 2},
	})
	if len(out) != 1 || out[0].Sector != "UNCLASSIFIED" {
		t.Fatalf("sectors = %+v", out)
	}
	if !approx(out[0].SharePct, 100) {
		t.Errorf("SharePct = %v, want 100", out[0].SharePct)
	}
}

func TestPearson(t *testing.T) {
	up := []float64{0.01, -0.02, 0.03, -0.01, 0.02}
	inverse := make([]float64, len(up))
	for i, v := range up {
		inverse[i] = -v
	}

	if r := pearson(up, up); !approx(r, 1) {
		t.Errorf("self correlation = %v, want 1", r)
	}
	if r := pearson(up, inverse); !approx(r, -1) {
		t.Errorf("inverse correlation = %v, want -1", r)
	}
	flat := []float64{0.01, 0.01, 0.01, 0.01, 0.01}
	if r := pearson(up, flat); r != 0 {
		t.Errorf("flat series correlation = %v, want 0", r)
	}
	if r := pearson(up[:1], up[:1]); r != 0 {
		t.Errorf("single sample correlation = %v, want 0", r)
	}
}

func TestDailyReturns(t *testing.T) {
	bars := []models.PriceBar{{Close: 100}, {Close: 110}, {Close: 99}}
	r := dailyReturns(bars)
	if len(r) != 2 || !approx(r[0], 0.1) || !approx(r[1], -0.1) {
		t.Fatalf("returns = %v", r)
	}

	// A zero close cannot produce a return.
	bars = []models.PriceBar{{Close: 100}, {Close: 0}, {Close: 50}}
	if r := dailyReturns(bars); len(r) != 0 {
		t.Errorf("returns across zero close = %v, want none", r)
	}
}

func TestCorrelationRiskLevels(t *testing.T) {
	base := []float64{0.01, -0.02, 0.03, -0.01, 0.02, -0.03, 0.01, 0.02}
	scaled := make([]float64, len(base))
	for i, v := range base {
		scaled[i] = v * 2
	}
	independent := []float64{0.02, 0.01, -0.03, 0.02, -0.01, 0.01, -0.02, 0.03}

	cr := correlationRisk([]string{"A", "B"}, map[string][]float64{
		"A": base, "B": independent,
	})
	if cr.Level != "LOW" || len(cr.Pairs) != 0 || cr.Warning != "" {
		t.Fatalf("uncorrelated portfolio = %+v", cr)
	}

	// A, B and C all track the same returns: 3 correlated pairs.
	cr = correlationRisk([]string{"A", "B", "C"}, map[string][]float64{
		"A": base, "B": scaled, "C": base,
	})
	if cr.Level != "MEDIUM" || len(cr.Pairs) != 3 {
		t.Fatalf("three-way cluster = %+v", cr)
	}

	// Four clones: 6 pairs, over the HIGH threshold.
	cr = correlationRisk([]string{"A", "B", "C", "D"}, map[string][]float64{
		"A": base, "B": base, "C": scaled, "D": base,
	})
	if cr.Level != "HIGH" || len(cr.Pairs) != 6 {
		t.Fatalf("four-way cluster = %+v", cr)
	}
	if cr.Warning == "" {
		t.Error("HIGH level should carry a warning")
	}
}

func TestCorrelationRiskSkipsFailedFetch(t *testing.T) {
	store, err := internalrepo.NewSQLitePositionStore(filepath.Join(t.TempDir(), "positions.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	for _, ticker := range []string{"AAA", "BBB", "GHOST"} {
		p := &models.Position{
			Ticker: ticker, Direction: models.DirectionLong,
			EntryPrice: 100, Quantity: 10, StopLoss: 95, Target1: 110,
			Status: models.StatusActive,
		}
		if _, err := store.Create(context.Background(), p); err != nil {
			t.Fatalf("create %s: %v", ticker, err)
		}
	}

	closes := []float64{100, 101, 99, 102, 100, 103, 101, 104}
	series := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		series[i] = models.PriceBar{Close: c}
	}
	bars := &stubBars{series: map[string][]models.PriceBar{
		"AAA": series, "BBB": series,
	}}

	uc := NewPerformanceUseCase(store, bars)
	cr, err := uc.CorrelationRisk(context.Background())
	if err != nil {
		t.Fatalf("correlation risk: %v", err)
	}
	if len(cr.Pairs) != 1 {
		t.Fatalf("pairs = %+v, want exactly one", cr.Pairs)
	}
	got := map[string]bool{cr.Pairs[0].TickerA: true, cr.Pairs[0].TickerB: true}
	if !got["AAA"] || !got["BBB"] {
		t.Fatalf("pair = %+v, want AAA and BBB", cr.Pairs[0])
	}
	if cr.Level != "LOW" {
		t.Errorf("level = %s, want LOW for a single pair", cr.Level)
	}
}
