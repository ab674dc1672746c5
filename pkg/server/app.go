package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "PortPulse/internal/domain/repository"
	"PortPulse/internal/usecase"
	pkgch "PortPulse/pkg/clickhouse"
	"PortPulse/pkg/config"
	xhttp "PortPulse/pkg/http"
	applogger "PortPulse/pkg/logger"
	"PortPulse/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg    *config.Config
	logger *applogger.Logger

	evaluator *usecase.PortfolioEvaluator
	scheduler *usecase.RefreshScheduler
	collector *usecase.QuoteCollector
	consumer  *queue.RedisQueue

	store     domrepo.PositionStore
	snapshots domrepo.SnapshotStore
	alerts    domrepo.AlertSink
	chClient  *pkgch.Client

	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	evaluator *usecase.PortfolioEvaluator,
	scheduler *usecase.RefreshScheduler,
	collector *usecase.QuoteCollector,
	consumer *queue.RedisQueue,
	store domrepo.PositionStore,
	snapshots domrepo.SnapshotStore,
	alerts domrepo.AlertSink,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		logger:      logger,
		evaluator:   evaluator,
		scheduler:   scheduler,
		collector:   collector,
		consumer:    consumer,
		store:       store,
		snapshots:   snapshots,
		alerts:      alerts,
		chClient:    chClient,
		httpHandler: handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestMetrics(l, time.Second),
	)

	// Background refresh consumer
	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			l.Error("queue consumer start error", applogger.Error(err))
			return err
		}
		l.Info("refresh queue consumer started")
	}

	// Cron evaluations during market hours
	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			l.Error("scheduler start error", applogger.Error(err))
			return err
		}
		l.Info("refresh scheduler started", applogger.String("spec", a.cfg.Scheduler.CronSpec))
	}

	// Live quote stream
	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				l.Error("quote collector error", applogger.Error(err))
			}
		}()
		l.Info("quote collector started")
	}

	// Warm the report so the first /api/portfolio call is served from memory.
	go func() {
		if _, err := a.evaluator.Evaluate(ctx); err != nil {
			l.Warn("initial evaluation failed", applogger.Error(err))
		}
	}()

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			l.Warn("quote collector stop error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("queue consumer stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.alerts != nil {
		if err := a.alerts.Close(); err != nil {
			l.Warn("alert sink close error", applogger.Error(err))
		}
	}
	if a.snapshots != nil {
		if err := a.snapshots.Close(); err != nil {
			l.Warn("snapshot store close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		l.Warn("position store close error", applogger.Error(err))
	}

	l.Info("shutdown complete")
	l.RemoveCollector()
	return nil
}
