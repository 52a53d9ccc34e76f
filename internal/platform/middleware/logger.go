package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/auth"
)

// Logger emits one structured line per request. When the auth middleware has
// resolved a caller, the line carries the user id and role so a patient's,
// doctor's or pharmacy's actions can be traced across services.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Int64("bytes_out", c.Response().Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())

			if ident, ok := auth.IdentityFromContext(req.Context()); ok {
				evt = evt.
					Str("user_id", ident.UserID.String()).
					Str("role", string(ident.Role))
			}

			evt.Msg("request")
			return err
		}
	}
}
