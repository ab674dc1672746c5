package api

import (
	"errors"
	"time"

	models "PortPulse/internal/domain/models"
	domrepo "PortPulse/internal/domain/repository"
	"PortPulse/internal/repository"
	svcmetrics "PortPulse/internal/service/metrics"
	"PortPulse/internal/usecase"
	xhttp "PortPulse/pkg/http"
	xlogger "PortPulse/pkg/logger"
	"PortPulse/pkg/queue"

	"github.com/labstack/echo/v4"
)

// PortfolioEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type PortfolioEchoHandler struct {
	logger      *xlogger.Logger
	evaluator   *usecase.PortfolioEvaluator
	positions   *usecase.PositionUseCase
	market      *usecase.MarketHealthUseCase
	performance *usecase.PerformanceUseCase
	publisher   queue.QueueService
	store       domrepo.PositionStore
}

func NewPortfolioEchoHandler(
	logger *xlogger.Logger,
	evaluator *usecase.PortfolioEvaluator,
	positions *usecase.PositionUseCase,
	market *usecase.MarketHealthUseCase,
	performance *usecase.PerformanceUseCase,
	publisher queue.QueueService,
	store domrepo.PositionStore,
) *PortfolioEchoHandler {
	svcmetrics.Register()
	return &PortfolioEchoHandler{
		logger:      logger,
		evaluator:   evaluator,
		positions:   positions,
		market:      market,
		performance: performance,
		publisher:   publisher,
		store:       store,
	}
}

func (h *PortfolioEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)

	g := e.Group("/api")
	g.GET("/portfolio", h.Portfolio)
	g.GET("/positions", h.ListPositions)
	g.POST("/positions", h.CreatePosition)
	g.PATCH("/positions/:id/stop", h.UpdateStop)
	g.PATCH("/positions/:id/target", h.UpdateTarget)
	g.POST("/positions/:id/close", h.ClosePosition)
	g.DELETE("/positions/:id", h.DeletePosition)
	g.GET("/market-health", h.MarketHealth)
	g.GET("/performance", h.Performance)
	g.GET("/history", h.TradeHistory)
	g.POST("/refresh", h.Refresh)
}

// Portfolio returns the most recent evaluation report. With ?refresh=true
// (or when no report exists yet) it runs a synchronous evaluation first.
func (h *PortfolioEchoHandler) Portfolio(c echo.Context) error {
	start := time.Now()
	defer func() {
		svcmetrics.EndpointLatency.WithLabelValues("portfolio").Observe(time.Since(start).Seconds())
	}()

	req := &models.PortfolioRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report := h.evaluator.Last()
	if req.Refresh || report == nil {
		fresh, err := h.evaluator.Evaluate(c.Request().Context())
		if err != nil {
			svcmetrics.EndpointErrors.WithLabelValues("portfolio").Inc()
			h.logger.Error("portfolio evaluation error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		report = fresh
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *PortfolioEchoHandler) ListPositions(c echo.Context) error {
	req := &models.ListPositionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.positions.List(c.Request().Context(), req.Status)
	if err != nil {
		h.logger.Error("list positions error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *PortfolioEchoHandler) CreatePosition(c echo.Context) error {
	req := &models.CreatePositionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	p := &models.Position{
		Ticker:     req.Ticker,
		Direction:  req.Direction,
		EntryPrice: req.EntryPrice,
		Quantity:   req.Quantity,
		StopLoss:   req.StopLoss,
		Target1:    req.Target1,
		Target2:    req.Target2,
		Sector:     req.Sector,
		Notes:      req.Notes,
	}
	created, err := h.positions.Create(c.Request().Context(), p)
	if err != nil {
		h.logger.Error("create position error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, created)
}

func (h *PortfolioEchoHandler) UpdateStop(c echo.Context) error {
	req := &models.UpdateStopRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	p, err := h.positions.UpdateStopLoss(c.Request().Context(), req.ID, req.StopLoss, req.Reason)
	if err != nil {
		return h.positionError(c, "update stop error", err)
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *PortfolioEchoHandler) UpdateTarget(c echo.Context) error {
	req := &models.UpdateTargetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	p, err := h.positions.UpdateTargets(c.Request().Context(), req.ID, req.Target1, req.Target2, req.Reason)
	if err != nil {
		return h.positionError(c, "update target error", err)
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *PortfolioEchoHandler) ClosePosition(c echo.Context) error {
	req := &models.ClosePositionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	trade, err := h.positions.Close(c.Request().Context(), req.ID, req.ExitPrice, req.Reason)
	if err != nil {
		return h.positionError(c, "close position error", err)
	}
	return xhttp.SuccessResponse(c, trade)
}

func (h *PortfolioEchoHandler) DeletePosition(c echo.Context) error {
	req := &models.DeletePositionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if err := h.positions.Delete(c.Request().Context(), req.ID); err != nil {
		return h.positionError(c, "delete position error", err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *PortfolioEchoHandler) MarketHealth(c echo.Context) error {
	start := time.Now()
	defer func() {
		svcmetrics.EndpointLatency.WithLabelValues("market_health").Observe(time.Since(start).Seconds())
	}()

	mh, err := h.market.Health(c.Request().Context())
	if err != nil {
		svcmetrics.EndpointErrors.WithLabelValues("market_health").Inc()
		h.logger.Error("market health error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, mh)
}

// PerformanceResponse bundles closed-trade statistics with the current
// open-risk picture so the dashboard needs a single call.
type PerformanceResponse struct {
	Stats       *models.PerformanceStats `json:"stats"`
	Risk        *models.PortfolioRisk    `json:"risk"`
	Sectors     []models.SectorExposure  `json:"sectors"`
	Correlation *models.CorrelationRisk  `json:"correlation"`
}

func (h *PortfolioEchoHandler) Performance(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.performance.Stats(ctx, 0)
	if err != nil {
		h.logger.Error("performance stats error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	risk, err := h.performance.Risk(ctx)
	if err != nil {
		h.logger.Error("portfolio risk error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	sectors, err := h.performance.SectorExposure(ctx)
	if err != nil {
		h.logger.Error("sector exposure error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	corr, err := h.performance.CorrelationRisk(ctx)
	if err != nil {
		h.logger.Error("correlation risk error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, &PerformanceResponse{Stats: stats, Risk: risk, Sectors: sectors, Correlation: corr})
}

func (h *PortfolioEchoHandler) TradeHistory(c echo.Context) error {
	req := &models.TradeHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	trades, err := h.positions.History(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("trade history error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, trades, int64(len(trades)))
}

// Refresh enqueues a background portfolio evaluation instead of blocking
// the request on upstream fetches.
func (h *PortfolioEchoHandler) Refresh(c echo.Context) error {
	if err := h.publisher.PublishMessage(c.Request().Context(), usecase.RefreshMessageType, map[string]interface{}{
		"requested_at": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		h.logger.Error("refresh enqueue error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.DataResponse(c, 202, map[string]string{"status": "queued"})
}

func (h *PortfolioEchoHandler) Healthz(c echo.Context) error {
	if err := h.store.Health(c.Request().Context()); err != nil {
		h.logger.Error("store health check failed", xlogger.Error(err))
		return xhttp.DataResponse(c, 503, map[string]string{"status": "degraded"})
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *PortfolioEchoHandler) positionError(c echo.Context, msg string, err error) error {
	if errors.Is(err, repository.ErrPositionNotFound) {
		return xhttp.NotFoundResponse(c, map[string]string{"error": err.Error()})
	}
	h.logger.Error(msg, xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}
