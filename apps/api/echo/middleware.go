package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/session"
)

// sessionMiddleware attaches a session.Gate to every request. Invalid, expired and
// revoked tokens all result in an anonymous session.
func sessionMiddleware(conf *core.Config, provider session.Provider, logger core.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			s := session.Anonymous()
			tokenStr := requestToken(ctx)
			if tokenStr != "" {
				if parsed, err := ParseToken(conf, tokenStr); err == nil {
					s = parsed
				}
			}

			gate := session.NewGate(provider, s)
			if s.IsAuthenticated() {
				if err := provider.Verify(ctx.Request().Context(), s); err != nil {
					logger.Debug("session rejected", err, *s.Identity)
					gate.Expire()
				}
			}
			if tokenStr != "" && !gate.Current().IsAuthenticated() {
				clearTokenCookie(ctx)
			}

			ctx.Set(contextGateKey, gate)
			ctx.Set(contextOrigState, gate.Current())
			return next(ctx)
		}
	}
}
