package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Fuel4us/hype-revenue/internal/domain/models"
	svcmetrics "github.com/Fuel4us/hype-revenue/internal/service/metrics"
	"github.com/Fuel4us/hype-revenue/internal/service/ratelimit"
	"github.com/Fuel4us/hype-revenue/internal/services/merger"
	xhttp "github.com/Fuel4us/hype-revenue/pkg/http"
	xlogger "github.com/Fuel4us/hype-revenue/pkg/logger"
)

// DashboardService is the use case surface the handler depends on.
type DashboardService interface {
	GetDashboard(ctx context.Context, timeframes []int) (*models.Dashboard, error)
	GetSummary(ctx context.Context, timeframes []int) (*models.Summary, error)
}

// DashboardEchoHandler serves the dashboard JSON API.
type DashboardEchoHandler struct {
	logger  *xlogger.Logger
	svc     DashboardService
	limiter *ratelimit.Limiter
	maxAge  time.Duration
}

func NewDashboardEchoHandler(logger *xlogger.Logger, svc DashboardService, limiter *ratelimit.Limiter, maxAge time.Duration) *DashboardEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &DashboardEchoHandler{logger: logger, svc: svc, limiter: limiter, maxAge: maxAge}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api", h.rateLimit)
	g.GET("/dashboard", h.Dashboard)
	g.GET("/summary", h.Summary)
}

func (h *DashboardEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *DashboardEchoHandler) Dashboard(c echo.Context) error {
	const endpoint = "dashboard"
	defer observe(endpoint, time.Now())

	req := &models.DashboardRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.APIErrors.WithLabelValues(endpoint, "ERR_VALIDATION").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.GetDashboard(c.Request().Context(), req.Timeframes)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	h.setCacheControl(c)
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Summary(c echo.Context) error {
	const endpoint = "summary"
	defer observe(endpoint, time.Now())

	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.APIErrors.WithLabelValues(endpoint, "ERR_VALIDATION").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.GetSummary(c.Request().Context(), req.Timeframes)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	h.setCacheControl(c)
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
			svcmetrics.APIErrors.WithLabelValues("rate_limit", "ERR_RATE_LIMITED").Inc()
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many requests, slow down"))
		}
		return next(c)
	}
}

func (h *DashboardEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	svcmetrics.APIErrors.WithLabelValues(endpoint, appErr.Code).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(endpoint+" usecase error", xlogger.String("code", appErr.Code), xlogger.Error(err))
	} else {
		h.logger.Warn(endpoint+" rejected", xlogger.String("code", appErr.Code), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func (h *DashboardEchoHandler) setCacheControl(c echo.Context) {
	if h.maxAge > 0 {
		c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age="+strconv.Itoa(int(h.maxAge.Seconds())))
	}
}

func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, merger.ErrNoRevenueData):
		return xhttp.ServiceUnavailableError("ERR_NO_REVENUE_DATA", "revenue data is unavailable").WithError(err)
	case errors.Is(err, merger.ErrInvalidTimeframe):
		return xhttp.NewAppError("ERR_INVALID_TIMEFRAME", "tf", "timeframes must be positive day counts", http.StatusBadRequest).WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.GatewayTimeoutError("upstream sources timed out").WithError(err)
	default:
		return xhttp.InternalError("failed to build dashboard").WithError(err)
	}
}

func observe(endpoint string, start time.Time) {
	svcmetrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
