package middleware

import (
	"github.com/labstack/echo/v4"
)

// RelayHardening returns an Echo middleware that stops browsers from treating
// relayed third-party content as active content of the proxy's own origin.
// Headers are set before the handler runs so they are present when the
// response is committed. fetch/XHR callers are unaffected.
func RelayHardening() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderXContentTypeOptions, "nosniff")
			h.Set(echo.HeaderContentSecurityPolicy, "sandbox")
			h.Set(echo.HeaderXFrameOptions, "DENY")

			return next(c)
		}
	}
}
