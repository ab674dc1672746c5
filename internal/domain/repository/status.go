package repository

import "PortPulse/internal/domain/models"

// StatusAll selects positions regardless of status.
const StatusAll = "ALL"

// IsValidStatus returns true if s is a supported position status filter.
func IsValidStatus(s string) bool {
	switch s {
	case models.StatusActive, models.StatusPending, models.StatusInactive, StatusAll:
		return true
	default:
		return false
	}
}

// DefaultStatus returns the default status filter.
func DefaultStatus() string { return models.StatusActive }

// NormalizeStatus converts a raw string to a valid status filter (or default).
func NormalizeStatus(s string) string {
	if s == "" {
		return DefaultStatus()
	}
	if IsValidStatus(s) {
		return s
	}
	return DefaultStatus()
}
