package usecase

import (
	"context"

	applogger "PortPulse/pkg/logger"
	"PortPulse/pkg/queue"
)

// RefreshMessageType is the queue message type for manual refresh requests.
const RefreshMessageType = "portfolio_refresh"

// RefreshJob consumes manual refresh requests from the queue. Routing
// bursts through a single consumer coalesces rapid refresh clicks into
// sequential cycles.
type RefreshJob struct {
	evaluator *PortfolioEvaluator
	logger    *applogger.Logger
}

func NewRefreshJob(evaluator *PortfolioEvaluator, logger *applogger.Logger) *RefreshJob {
	return &RefreshJob{evaluator: evaluator, logger: logger}
}

func (j *RefreshJob) Name() string { return "refresh_portfolio" }

func (j *RefreshJob) Type() string { return RefreshMessageType }

func (j *RefreshJob) Handle(ctx context.Context, _ interface{}) error {
	_, err := j.evaluator.Evaluate(ctx)
	if err != nil {
		j.logger.Error("queued refresh failed", applogger.Error(err))
	}
	return err
}

var _ queue.Job = (*RefreshJob)(nil)
