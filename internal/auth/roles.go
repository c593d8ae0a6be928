package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/portalworks/portal-auth/internal/domain"
	apperrors "github.com/portalworks/portal-auth/pkg/util/errorutil"
)

// SafeRedirect is where forbidden callers are sent.
const SafeRedirect = "/dashboard"

// RequireRole ensures the authenticated principal has one of the allowed roles.
// It must run after RequireAuthenticated.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.HasRole(allowed...) {
			return apperrors.NewDomainError(apperrors.CodeForbidden, "insufficient role", fiber.StatusForbidden,
				map[string]any{"redirect": SafeRedirect})
		}
		return c.Next()
	}
}

// RedirectFor returns the landing page for a role after login.
func RedirectFor(role domain.Role) string {
	if role == domain.RoleAdmin {
		return "/admin"
	}
	return SafeRedirect
}
