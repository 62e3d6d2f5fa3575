package middleware

import (
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// CORSConfig returns CORS middleware for the configured origins. A lone "*"
// allows any origin without credentials, as the public API needs none.
func CORSConfig(origins []string) echo.MiddlewareFunc {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{echo.GET, echo.OPTIONS},
			MaxAge:       86400, // 24 hours
		})
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  origins,
		AllowMethods:  []string{echo.GET, echo.OPTIONS},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		ExposeHeaders: []string{"X-Traversal-Truncated", "X-Traversal-Failures", echo.HeaderXRequestID},
		MaxAge:        86400, // 24 hours
	})
}

// SecurityHeaders adds security headers to all responses. API responses
// get a locked-down CSP; the SPA shell is left to its own policy.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Response().Header()
			header.Set("X-Content-Type-Options", "nosniff")
			header.Set("X-Frame-Options", "SAMEORIGIN")
			header.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			header.Set("Permissions-Policy",
				"geolocation=(), microphone=(), camera=(), payment=(), usb=(), magnetometer=(), gyroscope=()")

			if strings.HasPrefix(c.Request().URL.Path, "/api/") {
				header.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'self'")
			}

			// HSTS - only for HTTPS requests, direct or via proxy
			if c.Request().Header.Get("X-Forwarded-Proto") == "https" || c.Request().TLS != nil {
				header.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			return next(c)
		}
	}
}
