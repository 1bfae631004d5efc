package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// corsMiddleware allows cross-origin POST/OPTIONS with Content-Type and
// Authorization headers. OPTIONS preflight answers 200 with no body, which
// is what the frontend collaborator expects; echo's stock CORS middleware
// answers 204 instead, so the headers are set by hand here.
func (s *Server) corsMiddleware() echo.MiddlewareFunc {
	allowedOrigins := strings.Split(s.config.Security.CORSAllowedOrigins, ",")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get(echo.HeaderOrigin)

			allowed := "*"
			for _, candidate := range allowedOrigins {
				candidate = strings.TrimSpace(candidate)
				if candidate == "*" {
					allowed = "*"
					break
				}
				if candidate == origin {
					allowed = origin
					break
				}
			}

			header := c.Response().Header()
			header.Set(echo.HeaderAccessControlAllowOrigin, allowed)
			header.Set(echo.HeaderAccessControlAllowMethods, "GET, POST, PUT, DELETE, OPTIONS")
			header.Set(echo.HeaderAccessControlAllowHeaders, "Content-Type, Authorization")

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}

			return next(c)
		}
	}
}
