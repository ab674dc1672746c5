package scoring

import "PortPulse/internal/domain/models"

// Recommended actions.
const (
	ActionExitNow      = "EXIT NOW"
	ActionConsiderExit = "CONSIDER EXIT"
	ActionHoldAdd      = "HOLD/ADD"
	ActionWatchClosely = "WATCH CLOSELY"
	ActionMonitor      = "MONITOR"
)

// actionRule is one row of the decision table.
type actionRule struct {
	match  func(a *models.PositionAnalysis) bool
	action string
}

// actionTable is evaluated top to bottom, first match wins. Order is the
// tie-break: danger rows outrank opportunity rows.
var actionTable = []actionRule{
	{
		match:  func(a *models.PositionAnalysis) bool { return a.Emergency.Flag || a.SLRiskScore >= 80 },
		action: ActionExitNow,
	},
	{
		match:  func(a *models.PositionAnalysis) bool { return a.SLRiskScore >= 60 },
		action: ActionConsiderExit,
	},
	{
		match:  func(a *models.PositionAnalysis) bool { return a.UpsideScore >= 70 && alignedTrend(a.MomentumScore, a.Direction) },
		action: ActionHoldAdd,
	},
	{
		match:  func(a *models.PositionAnalysis) bool { return a.SLRiskScore >= 40 },
		action: ActionWatchClosely,
	},
}

// RecommendAction walks the decision table and returns the first matching
// action, MONITOR when no row matches.
func RecommendAction(a *models.PositionAnalysis) string {
	for _, rule := range actionTable {
		if rule.match(a) {
			return rule.action
		}
	}
	return ActionMonitor
}
