package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs method, path, peer, status and latency per request.
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			log.Printf("[%s] %s %s - %d (%s)",
				c.Request().Method,
				c.Request().RequestURI,
				c.Request().RemoteAddr,
				c.Response().Status,
				time.Since(start),
			)
			return err
		}
	}
}
