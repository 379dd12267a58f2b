package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/symone-ai/symone-admin/internal/analytics"
	"github.com/symone-ai/symone-admin/internal/export"
)

// AnalyticsHandler handles analytics report endpoints
type AnalyticsHandler struct {
	analytics *analytics.Service
	exporter  *export.Uploader
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service *analytics.Service, exporter *export.Uploader) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: service,
		exporter:  exporter,
	}
}

// mapAnalyticsError translates analytics service errors to API responses
func mapAnalyticsError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, analytics.ErrInvalidArgument):
		return ErrorBadRequest(c, err.Error())
	case errors.Is(err, analytics.ErrDataSourceUnavailable):
		return ErrorServiceUnavailable(c, "analytics data source unavailable")
	default:
		return ErrorInternal(c, "failed to compute report")
	}
}

// GetCosts returns the platform-wide per-team cost report
// GET /api/v1/analytics/costs?days=&top=
func (h *AnalyticsHandler) GetCosts(c echo.Context) error {
	params, err := ParseReportParams(c)
	if err != nil {
		return ErrorBadRequest(c, err.Error())
	}

	report, err := h.analytics.GetUsageCosts(c.Request().Context(), params.WindowDays, params.TopN)
	if err != nil {
		return mapAnalyticsError(c, err)
	}

	return SuccessOK(c, report)
}

// GetTeamUserCosts returns one team's per-user cost breakdown
// GET /api/v1/analytics/teams/:id/users?days=&top=
func (h *AnalyticsHandler) GetTeamUserCosts(c echo.Context) error {
	teamID := c.Param("id")
	params, err := ParseReportParams(c)
	if err != nil {
		return ErrorBadRequest(c, err.Error())
	}

	result, err := h.analytics.GetTeamUserCosts(c.Request().Context(), teamID, params.WindowDays, params.TopN)
	if err != nil {
		return mapAnalyticsError(c, err)
	}

	return SuccessOK(c, result)
}

// GetZombies returns idle session groups ranked by idle ratio
// GET /api/v1/analytics/zombies?days=&idle_threshold=&top=
func (h *AnalyticsHandler) GetZombies(c echo.Context) error {
	params, err := ParseReportParams(c)
	if err != nil {
		return ErrorBadRequest(c, err.Error())
	}
	// Zombie detection defaults to a shorter window than cost reports
	if c.QueryParam("days") == "" {
		params.WindowDays = 7
	}
	idleThreshold, err := ParseFloatParam(c, "idle_threshold", h.analytics.Config().IdleThresholdSecondsPerTool)
	if err != nil {
		return ErrorBadRequest(c, err.Error())
	}

	report, err := h.analytics.GetZombieUsers(c.Request().Context(), params.WindowDays, idleThreshold, params.TopN)
	if err != nil {
		return mapAnalyticsError(c, err)
	}

	return SuccessOK(c, report)
}

// GetConnections returns connections currently considered live
// GET /api/v1/analytics/connections
func (h *AnalyticsHandler) GetConnections(c echo.Context) error {
	report, err := h.analytics.GetActiveConnections(c.Request().Context())
	if err != nil {
		return mapAnalyticsError(c, err)
	}

	return SuccessOK(c, report)
}

// GetOverview returns the platform activity summary
// GET /api/v1/analytics/overview
func (h *AnalyticsHandler) GetOverview(c echo.Context) error {
	report, err := h.analytics.GetOverview(c.Request().Context())
	if err != nil {
		return mapAnalyticsError(c, err)
	}

	return SuccessOK(c, report)
}

// Export uploads a cost report snapshot to S3
// POST /api/v1/analytics/export
func (h *AnalyticsHandler) Export(c echo.Context) error {
	if !h.exporter.Enabled() {
		return ErrorServiceUnavailable(c, "report export is not configured")
	}

	params, err := ParseReportParams(c)
	if err != nil {
		return ErrorBadRequest(c, err.Error())
	}

	report, err := h.analytics.GetUsageCosts(c.Request().Context(), params.WindowDays, params.TopN)
	if err != nil {
		return mapAnalyticsError(c, err)
	}

	key, err := h.exporter.UploadCostReport(c.Request().Context(), report)
	if err != nil {
		return ErrorInternal(c, "failed to upload report snapshot")
	}

	return SuccessCreated(c, map[string]string{
		"key": key,
	})
}
