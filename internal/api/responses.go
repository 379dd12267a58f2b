package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ReportParams holds the common query parameters of the analytics endpoints
type ReportParams struct {
	WindowDays int
	TopN       int
}

// DefaultReportParams returns default report parameters
func DefaultReportParams() *ReportParams {
	return &ReportParams{
		WindowDays: 30,
		TopN:       20,
	}
}

// ParseReportParams extracts report parameters from the query string. A value
// that does not parse as an integer fails the call; range checks are left to
// the analytics service so every caller gets the same errors.
func ParseReportParams(c echo.Context) (*ReportParams, error) {
	params := DefaultReportParams()

	if days := c.QueryParam("days"); days != "" {
		d, err := strconv.Atoi(days)
		if err != nil {
			return nil, fmt.Errorf("days must be an integer, got %q", days)
		}
		params.WindowDays = d
	}

	if top := c.QueryParam("top"); top != "" {
		t, err := strconv.Atoi(top)
		if err != nil {
			return nil, fmt.Errorf("top must be an integer, got %q", top)
		}
		params.TopN = t
	}

	return params, nil
}

// ParseFloatParam extracts a float query parameter, using def when absent. A
// present value that does not parse fails the call.
func ParseFloatParam(c echo.Context, name string, def float64) (float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	return v, nil
}

// SuccessCreated returns a 201 Created response
func SuccessCreated(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

// SuccessOK returns a 200 OK response
func SuccessOK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// SuccessNoContent returns a 204 No Content response
func SuccessNoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}
