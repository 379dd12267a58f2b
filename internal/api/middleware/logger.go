// Package middleware holds echo middleware shared by the admin API routes.
package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Logger returns JSON request logging middleware. One line per request, keyed
// by the request ID so dashboard calls can be traced through the log.
func Logger() echo.MiddlewareFunc {
	return middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}",` +
			`"method":"${method}","uri":"${uri}","status":${status},` +
			`"latency_ns":${latency},"bytes_in":${bytes_in},"bytes_out":${bytes_out},` +
			`"error":"${error}"}` + "\n",
		CustomTimeFormat: time.RFC3339,
	})
}
