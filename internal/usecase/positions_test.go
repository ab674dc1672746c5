package usecase

import (
	"context"
	"path/filepath"
	"testing"

	"PortPulse/internal/domain/models"
	internalrepo "PortPulse/internal/repository"
)

type captureSink struct {
	alerts []*models.Alert
}

func (s *captureSink) Publish(_ context.Context, a *models.Alert) error {
	s.alerts = append(s.alerts, a)
	return nil
}

func (s *captureSink) Close() error { return nil }

func newPositionFixture(t *testing.T) (*PositionUseCase, *captureSink) {
	t.Helper()
	store, err := internalrepo.NewSQLitePositionStore(filepath.Join(t.TempDir(), "positions.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	sink := &captureSink{}
	return NewPositionUseCase(store, sink, nil), sink
}

func TestValidateOrdering(t *testing.T) {
	cases := []struct {
		name      string
		direction string
		entry     float64
		stop      float64
		t1        float64
		t2        float64
		wantErr   bool
	}{
		{"long valid", models.DirectionLong, 100, 95, 110, 120, false},
		{"long t2 unset", models.DirectionLong, 100, 95, 110, 0, false},
		{"long stop above entry", models.DirectionLong, 100, 101, 110, 0, true},
		{"long stop at entry", models.DirectionLong, 100, 100, 110, 0, true},
		{"long target below entry", models.DirectionLong, 100, 95, 99, 0, true},
		{"long t2 below t1", models.DirectionLong, 100, 95, 110, 105, true},
		{"short valid", models.DirectionShort, 100, 105, 90, 85, false},
		{"short t2 unset", models.DirectionShort, 100, 105, 90, 0, false},
		{"short stop below entry", models.DirectionShort, 100, 99, 90, 0, true},
		{"short target above entry", models.DirectionShort, 100, 105, 101, 0, true},
		{"short t2 above t1", models.DirectionShort, 100, 105, 90, 95, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateOrdering(tc.direction, tc.entry, tc.stop, tc.t1, tc.t2)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateRoundsAndDefaults(t *testing.T) {
	uc, _ := newPositionFixture(t)
	ctx := context.Background()

	p, err := uc.Create(ctx, &models.Position{
		Ticker:     "AAPL",
		EntryPrice: 100,
		Quantity:   10,
		StopLoss:   95.01,
		Target1:    110.02,
		Target2:    120.04,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Direction != models.DirectionLong {
		t.Errorf("Direction = %q, want LONG default", p.Direction)
	}
	if p.StopLoss != 95.00 {
		t.Errorf("StopLoss = %v, want 95.00", p.StopLoss)
	}
	if p.Target1 != 110.00 {
		t.Errorf("Target1 = %v, want 110.00", p.Target1)
	}
	if p.Target2 != 120.05 {
		t.Errorf("Target2 = %v, want 120.05", p.Target2)
	}
}

func TestCreateRejectsBadOrdering(t *testing.T) {
	uc, _ := newPositionFixture(t)
	_, err := uc.Create(context.Background(), &models.Position{
		Ticker:     "AAPL",
		EntryPrice: 100,
		Quantity:   10,
		StopLoss:   105,
		Target1:    110,
	})
	if err == nil {
		t.Fatal("expected ordering error for long stop above entry")
	}
}

func TestUpdateStopLossPublishesRevision(t *testing.T) {
	uc, sink := newPositionFixture(t)
	ctx := context.Background()

	p, err := uc.Create(ctx, &models.Position{
		Ticker: "NVDA", EntryPrice: 100, Quantity: 5, StopLoss: 90, Target1: 115,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := uc.UpdateStopLoss(ctx, p.ID, 94, "trailing")
	if err != nil {
		t.Fatalf("UpdateStopLoss: %v", err)
	}
	if got.StopLoss != 94 {
		t.Errorf("StopLoss = %v, want 94", got.StopLoss)
	}
	if len(sink.alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(sink.alerts))
	}
	a := sink.alerts[0]
	if a.Kind != models.AlertStopRevised || a.OldValue != 90 || a.NewValue != 94 {
		t.Errorf("alert = %+v", a)
	}

	if _, err := uc.UpdateStopLoss(ctx, p.ID, 101, "bad"); err == nil {
		t.Error("expected ordering error for stop above entry")
	}
}

func TestUpdateTargetsPublishesRevision(t *testing.T) {
	uc, sink := newPositionFixture(t)
	ctx := context.Background()

	p, err := uc.Create(ctx, &models.Position{
		Ticker: "AMD", EntryPrice: 100, Quantity: 5, StopLoss: 90, Target1: 110,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := uc.UpdateTargets(ctx, p.ID, 112, 125, "extended base")
	if err != nil {
		t.Fatalf("UpdateTargets: %v", err)
	}
	if got.Target1 != 112 || got.Target2 != 125 {
		t.Errorf("targets = %v/%v", got.Target1, got.Target2)
	}
	if len(sink.alerts) != 1 || sink.alerts[0].Kind != models.AlertTargetRevised {
		t.Fatalf("alerts = %+v", sink.alerts)
	}
}

func TestClosePublishesAlert(t *testing.T) {
	uc, sink := newPositionFixture(t)
	ctx := context.Background()

	p, err := uc.Create(ctx, &models.Position{
		Ticker: "META", EntryPrice: 100, Quantity: 10, StopLoss: 90, Target1: 110,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec, err := uc.Close(ctx, p.ID, 108, "TARGET")
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if rec.PnL != 80 {
		t.Errorf("PnL = %v, want 80", rec.PnL)
	}
	if len(sink.alerts) != 1 || sink.alerts[0].Kind != models.AlertPositionClosed {
		t.Fatalf("alerts = %+v", sink.alerts)
	}

	if _, err := uc.Close(ctx, p.ID, 0, "MANUAL"); err == nil {
		t.Error("expected error for non-positive exit price")
	}
}

func TestListNormalizesStatus(t *testing.T) {
	uc, _ := newPositionFixture(t)
	ctx := context.Background()

	if _, err := uc.Create(ctx, &models.Position{
		Ticker: "SPY", EntryPrice: 100, Quantity: 1, StopLoss: 95, Target1: 105,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := uc.List(ctx, "not-a-status")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("list with garbage status should fall back to ACTIVE, got %d rows", len(got))
	}
}
