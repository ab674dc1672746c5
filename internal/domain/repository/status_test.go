package repository

import (
	"testing"

	"PortPulse/internal/domain/models"
)

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{models.StatusActive, models.StatusPending, models.StatusInactive, StatusAll} {
		if !IsValidStatus(s) {
			t.Errorf("IsValidStatus(%q) = false", s)
		}
	}
	for _, s := range []string{"", "active", "CLOSED", "all"} {
		if IsValidStatus(s) {
			t.Errorf("IsValidStatus(%q) = true", s)
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	if got := NormalizeStatus(""); got != models.StatusActive {
		t.Errorf("NormalizeStatus(\"\") = %q", got)
	}
	if got := NormalizeStatus("garbage"); got != models.StatusActive {
		t.Errorf("NormalizeStatus(garbage) = %q", got)
	}
	if got := NormalizeStatus(StatusAll); got != StatusAll {
		t.Errorf("NormalizeStatus(ALL) = %q", got)
	}
	if got := NormalizeStatus(models.StatusInactive); got != models.StatusInactive {
		t.Errorf("NormalizeStatus(INACTIVE) = %q", got)
	}
}
