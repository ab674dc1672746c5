package di

import (
	"context"
	"fmt"
	"time"

	"PortPulse/internal/domain/repository"
	domsvc "PortPulse/internal/domain/service"
	"PortPulse/internal/handler/api"
	mid "PortPulse/internal/middleware"
	internalrepo "PortPulse/internal/repository"
	svccache "PortPulse/internal/service/cache"
	"PortPulse/internal/service/marketdata"
	"PortPulse/internal/services/indicators"
	"PortPulse/internal/services/patterns"
	"PortPulse/internal/services/scoring"
	"PortPulse/internal/usecase"
	pkgcache "PortPulse/pkg/cache"
	pkgch "PortPulse/pkg/clickhouse"
	"PortPulse/pkg/config"
	xhttp "PortPulse/pkg/http"
	pkgkafka "PortPulse/pkg/kafka"
	applogger "PortPulse/pkg/logger"
	"PortPulse/pkg/metrics"
	"PortPulse/pkg/queue"
	"PortPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRedisCache creates the shared Redis cache client.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	c, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix("portpulse"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideClickHouseClient creates a ClickHouse client and prepares the
// snapshot schema. Returns nil when archival is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.SnapshotSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideSnapshotStore creates the evaluation archive, nil when ClickHouse
// is disabled.
func ProvideSnapshotStore(chClient *pkgch.Client, l *applogger.Logger) repository.SnapshotStore {
	if chClient == nil {
		return nil
	}
	store := internalrepo.NewCHSnapshotStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideKafkaProducer creates a Kafka producer, nil when alerts go to the log.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertSink routes alerts to Kafka with a Redis cooldown gate, or to
// the log when no brokers are configured.
func ProvideAlertSink(
	cfg *config.Config,
	producer *pkgkafka.Producer,
	gate *pkgcache.RedisCache,
	l *applogger.Logger,
	m repository.Metrics,
) repository.AlertSink {
	if producer == nil {
		return internalrepo.NewLogAlertSink(l)
	}
	// Memory layer keeps repeat cooldown checks off Redis inside one cycle.
	layered := pkgcache.NewLayeredCache(gate)
	return internalrepo.NewKafkaAlertSink(producer, cfg.Kafka.AlertsTopic, layered, cfg.Alerts.Cooldown, l, m)
}

// ProvidePositionStore opens the SQLite database and ensures the schema.
func ProvidePositionStore(cfg *config.Config, l *applogger.Logger) (repository.PositionStore, error) {
	store, err := internalrepo.NewSQLitePositionStore(cfg.SQLite.Path, l)
	if err != nil {
		return nil, fmt.Errorf("position store: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("position schema: %w", err)
	}
	return store, nil
}

// ProvideBarSource creates the rate-limited daily bar fetcher. Bar series
// cache in Redis so restarts and replicas share fetched history.
func ProvideBarSource(cfg *config.Config, l *applogger.Logger, m repository.Metrics) repository.BarSource {
	barCache := svccache.NewRedisCache(svccache.RedisConfig{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   "portpulse:md",
	})
	return marketdata.New(
		cfg.MarketData.BaseURL,
		cfg.MarketData.Token,
		cfg.MarketData.Timeout,
		barCache,
		l,
		marketdata.WithCacheTTL(cfg.MarketData.CacheTTL),
		marketdata.WithRateLimit(float64(cfg.MarketData.RateCapacity), cfg.MarketData.RatePerSec),
		marketdata.WithMetrics(m),
	)
}

// ProvideIndicatorEngine creates the indicator calculator.
func ProvideIndicatorEngine() domsvc.IndicatorEngine {
	return indicators.NewEngine()
}

// ProvidePatternDetector creates the pattern and level detector.
func ProvidePatternDetector() domsvc.PatternDetector {
	return patterns.NewDetector()
}

// ProvidePositionScorer creates the position scorer.
func ProvidePositionScorer() domsvc.PositionScorer {
	return scoring.NewScorer()
}

// ProvideMarketScorer creates the index health scorer.
func ProvideMarketScorer(cfg *config.Config) domsvc.MarketScorer {
	return scoring.NewMarketScorer(cfg.Market.IndexTicker)
}

// ProvideMarketHealthUseCase creates the memoized market health use case.
func ProvideMarketHealthUseCase(
	bars repository.BarSource,
	scorer domsvc.MarketScorer,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.MarketHealthUseCase {
	return usecase.NewMarketHealthUseCase(
		bars,
		scorer,
		cfg.Market.IndexTicker,
		cfg.Market.VolatilityTicker,
		cfg.Market.HealthTTL,
		l,
	)
}

// ProvidePortfolioEvaluator creates the evaluation cycle use case.
func ProvidePortfolioEvaluator(
	bars repository.BarSource,
	store repository.PositionStore,
	snapshots repository.SnapshotStore,
	alerts repository.AlertSink,
	market *usecase.MarketHealthUseCase,
	engine domsvc.IndicatorEngine,
	detector domsvc.PatternDetector,
	scorer domsvc.PositionScorer,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.PortfolioEvaluator {
	return usecase.NewPortfolioEvaluator(
		bars, store, snapshots, alerts, market,
		engine, detector, scorer, m, l,
		usecase.WithEvalTimeout(cfg.Market.EvalTimeout),
		usecase.WithEvalConcurrency(cfg.Market.EvalConcurrency),
	)
}

// ProvidePositionUseCase creates the position management use case.
func ProvidePositionUseCase(
	store repository.PositionStore,
	alerts repository.AlertSink,
	l *applogger.Logger,
) *usecase.PositionUseCase {
	return usecase.NewPositionUseCase(store, alerts, l)
}

// ProvidePerformanceUseCase creates the trade statistics use case.
func ProvidePerformanceUseCase(store repository.PositionStore, bars repository.BarSource) *usecase.PerformanceUseCase {
	return usecase.NewPerformanceUseCase(store, bars)
}

// ProvideRefreshScheduler creates the cron-driven refresh, nil when disabled.
func ProvideRefreshScheduler(
	evaluator *usecase.PortfolioEvaluator,
	cfg *config.Config,
	l *applogger.Logger,
) (*usecase.RefreshScheduler, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone: %w", err)
	}
	hours := usecase.MarketHours{
		OpenHour:  cfg.Scheduler.OpenHour,
		OpenMin:   cfg.Scheduler.OpenMin,
		CloseHour: cfg.Scheduler.CloseHour,
		CloseMin:  cfg.Scheduler.CloseMin,
		Weekdays:  true,
		Location:  loc,
	}
	return usecase.NewRefreshScheduler(evaluator, cfg.Scheduler.CronSpec, hours, l), nil
}

// ProvideQuoteCollector wires the WebSocket quote stream, nil when disabled.
func ProvideQuoteCollector(
	cfg *config.Config,
	store repository.PositionStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.QuoteCollector {
	if !cfg.Stream.Enabled {
		return nil
	}
	stream := marketdata.NewStream(
		cfg.MarketData.Token,
		cfg.Stream.WebSocketURL,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		l,
	)
	table := usecase.NewLastPriceTable()
	pipe := mid.NewQuotePipeline(table, m,
		mid.WithMaxRPS(10),
		mid.WithBufferSize(1000),
	)
	return usecase.NewQuoteCollector(stream, store, table, m, pipe)
}

// ProvideQueuePublisher creates the Redis-backed refresh publisher. In
// production it also attaches the error-log aggregator, flushing
// deduplicated batches to a dedicated Redis list.
func ProvideQueuePublisher(cfg *config.Config, l *applogger.Logger, cache *pkgcache.RedisCache) queue.QueueService {
	if cfg.Environment == "production" {
		logs := queue.NewRedisPublisher(l, cache.Client(), queue.WithKeyPrefix("portpulse:logs"))
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "log_aggregate",
			Publisher:      logs,
		})
	}
	return queue.NewRedisPublisher(l, cache.Client())
}

// ProvideQueueConsumer creates the worker that drains refresh requests.
func ProvideQueueConsumer(
	cfg *config.Config,
	l *applogger.Logger,
	cache *pkgcache.RedisCache,
	evaluator *usecase.PortfolioEvaluator,
) *queue.RedisQueue {
	qc := &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.BufferSize,
		RetryLimit: cfg.Queue.RetryMax,
		RetryDelay: 30 * time.Second,
	}
	jobs := []queue.Job{usecase.NewRefreshJob(evaluator, l)}
	return queue.NewRedisConsumer(l, qc, cache.Client(), jobs)
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	evaluator *usecase.PortfolioEvaluator,
	positions *usecase.PositionUseCase,
	market *usecase.MarketHealthUseCase,
	performance *usecase.PerformanceUseCase,
	publisher queue.QueueService,
	store repository.PositionStore,
) xhttp.Handler {
	return api.NewPortfolioEchoHandler(l, evaluator, positions, market, performance, publisher, store)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	evaluator *usecase.PortfolioEvaluator,
	scheduler *usecase.RefreshScheduler,
	collector *usecase.QuoteCollector,
	consumer *queue.RedisQueue,
	store repository.PositionStore,
	snapshots repository.SnapshotStore,
	alerts repository.AlertSink,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, evaluator, scheduler, collector, consumer, store, snapshots, alerts, chClient, handler)
}
