package patterns

import (
	"math"
	"testing"

	"PortPulse/internal/domain/models"
)

func TestLevelsSupportAndResistance(t *testing.T) {
	bars := baseBars(40)
	// Three touches near 95 and two near 105.
	bars[5].Low = 95
	bars[15].Low = 95.2
	bars[25].Low = 94.9
	bars[10].High = 105
	bars[30].High = 105.2

	d := NewDetector()
	set := d.Levels(bars, 100)

	if set.Support == nil {
		t.Fatalf("no support found")
	}
	if math.Abs(set.Support.Price-95.03) > 0.1 {
		t.Errorf("support price = %v, want ~95.03", set.Support.Price)
	}
	if set.Support.PivotCount != 3 {
		t.Errorf("support pivot count = %d, want 3", set.Support.PivotCount)
	}
	if set.Support.Strength != models.StrengthStrong {
		t.Errorf("support strength = %s, want %s", set.Support.Strength, models.StrengthStrong)
	}
	if set.Support.DistancePct >= 0 {
		t.Errorf("support distance = %v, want negative", set.Support.DistancePct)
	}

	if set.Resistance == nil {
		t.Fatalf("no resistance found")
	}
	if math.Abs(set.Resistance.Price-105.1) > 0.1 {
		t.Errorf("resistance price = %v, want ~105.1", set.Resistance.Price)
	}
	if set.Resistance.Kind != "RESISTANCE" {
		t.Errorf("kind = %s, want RESISTANCE", set.Resistance.Kind)
	}
}

func TestLevelsNearestSelection(t *testing.T) {
	bars := baseBars(40)
	// Two distinct supports: nearest (highest below price) must win.
	bars[5].Low = 90
	bars[15].Low = 96
	bars[25].High = 104
	bars[32].High = 110

	d := NewDetector()
	set := d.Levels(bars, 100)

	if set.Support == nil || math.Abs(set.Support.Price-96) > 0.01 {
		t.Fatalf("nearest support = %+v, want 96", set.Support)
	}
	if set.Resistance == nil || math.Abs(set.Resistance.Price-104) > 0.01 {
		t.Fatalf("nearest resistance = %+v, want 104", set.Resistance)
	}
	if len(set.All) != 4 {
		t.Fatalf("len(All) = %d, want 4", len(set.All))
	}
}

func TestLevelsShortSeries(t *testing.T) {
	d := NewDetector()
	set := d.Levels(baseBars(4), 100)
	if set.Support != nil || set.Resistance != nil || len(set.All) != 0 {
		t.Fatalf("levels from a 4-bar series: %+v", set)
	}
}

func TestLevelsZeroPrice(t *testing.T) {
	bars := baseBars(40)
	bars[5].Low = 95

	d := NewDetector()
	set := d.Levels(bars, 0)
	for _, lvl := range set.All {
		if lvl.DistancePct != 0 {
			t.Fatalf("distance with zero current price = %v, want 0", lvl.DistancePct)
		}
	}
}
