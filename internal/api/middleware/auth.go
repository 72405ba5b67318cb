package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ecommerce/auth-service/internal/api/metrics"
	"github.com/ecommerce/auth-service/internal/core/domain"
	"github.com/ecommerce/auth-service/internal/core/ports"
)

// PrincipalKey is the echo context key holding the authenticated domain.Principal.
const PrincipalKey = "principal"

// Auth extracts the Bearer token, asks the guard whether it satisfies the
// required role and injects the resulting principal into the context.
// An empty required role admits any authenticated principal.
func Auth(guard ports.AccessGuard, required domain.Role) echo.MiddlewareFunc {
	label := required.String()
	if label == "" {
		label = "ANY"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				metrics.GuardDecisionsTotal.WithLabelValues(label, "invalid").Inc()
				return err
			}

			principal, err := guard.Authorize(c.Request().Context(), raw, required)
			if err != nil {
				metrics.GuardDecisionsTotal.WithLabelValues(label, decision(err)).Inc()
				return err
			}

			metrics.GuardDecisionsTotal.WithLabelValues(label, "allow").Inc()
			c.Set(PrincipalKey, principal)
			return next(c)
		}
	}
}

// Principal returns the principal injected by Auth, if any.
func Principal(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(domain.Principal)
	return p, ok
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

func decision(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "invalid"
	}
}
