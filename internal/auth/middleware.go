package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/symone-ai/symone-admin/pkg/types"
)

// ContextKey is the echo context key for authenticated claims
const ContextKey = "auth_claims"

// RequireAuth returns middleware that validates the bearer token and
// stores the parsed claims on the request context.
func RequireAuth(a *Auth) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(401, "missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(401, "invalid authorization header")
			}

			claims, err := a.ValidateAccessToken(parts[1])
			if err != nil {
				return echo.NewHTTPError(401, "invalid or expired token")
			}

			role := types.AdminRole(claims.Role)
			if !role.IsValid() {
				return echo.NewHTTPError(401, "invalid or expired token")
			}

			c.Set(ContextKey, claims)
			return next(c)
		}
	}
}

// RequireRole returns middleware that restricts the route to the given roles.
// Must run after RequireAuth.
func RequireRole(roles ...types.AdminRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil {
				return echo.NewHTTPError(401, "authentication required")
			}

			for _, role := range roles {
				if types.AdminRole(claims.Role) == role {
					return next(c)
				}
			}

			return echo.NewHTTPError(403, "insufficient permissions")
		}
	}
}

// RequireAdmin allows any known admin role. Analytics endpoints are readable
// by every dashboard operator regardless of role.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(types.RoleSuperAdmin, types.RoleAdmin, types.RoleSupport, types.RoleAnalyst)
}

// RequireSuperAdmin restricts the route to super admins.
func RequireSuperAdmin() echo.MiddlewareFunc {
	return RequireRole(types.RoleSuperAdmin)
}

// ClaimsFrom returns the authenticated claims from the echo context,
// or nil when the request is unauthenticated.
func ClaimsFrom(c echo.Context) *Claims {
	claims, ok := c.Get(ContextKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}
