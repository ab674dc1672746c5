//go:build wireinject
// +build wireinject

package di

import (
	"PortPulse/pkg/config"
	"PortPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvidePositionStore,
		ProvideSnapshotStore,
		ProvideAlertSink,
		ProvideBarSource,

		// Domain services
		ProvideIndicatorEngine,
		ProvidePatternDetector,
		ProvidePositionScorer,
		ProvideMarketScorer,

		// Use cases
		ProvideMarketHealthUseCase,
		ProvidePortfolioEvaluator,
		ProvidePositionUseCase,
		ProvidePerformanceUseCase,
		ProvideRefreshScheduler,
		ProvideQuoteCollector,
		ProvideQueuePublisher,
		ProvideQueueConsumer,

		// HTTP and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
