package models

import "time"

// Alert kinds published to the notification sink.
const (
	AlertSLBreach       = "SL_BREACH"
	AlertEmergencyExit  = "EMERGENCY_EXIT"
	AlertHighRisk       = "HIGH_RISK"
	AlertStopRevised    = "STOP_REVISED"
	AlertTargetRevised  = "TARGET_REVISED"
	AlertPositionClosed = "POSITION_CLOSED"
)

// Alert is a structured notification. Delivery is fire-and-forget: a sink
// failure is logged and never affects evaluation results.
type Alert struct {
	Kind     string    `json:"kind"`
	Ticker   string    `json:"ticker"`
	OldValue float64   `json:"old_value,omitempty"`
	NewValue float64   `json:"new_value,omitempty"`
	Reason   string    `json:"reason"`
	Priority string    `json:"priority"` // "LOW", "HIGH", "CRITICAL"
	At       time.Time `json:"at"`
}
