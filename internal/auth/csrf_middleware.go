package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/portalworks/portal-auth/pkg/util/errorutil"
)

const (
	CSRFHeader    = "X-CSRF-Token"
	CSRFFormField = "csrf_token"
)

// RequireCSRF rejects state-changing requests whose anti-forgery token does not
// belong to the caller's session. It must run after RequireAuthenticated.
func RequireCSRF(csrf *CSRFManager) fiber.Handler {
	return csrfGuard(csrf, false)
}

// RequireCSRFWhenAuthenticated checks the token only if a principal was
// loaded, for routes behind OptionalAuthenticated.
func RequireCSRFWhenAuthenticated(csrf *CSRFManager) fiber.Handler {
	return csrfGuard(csrf, true)
}

func csrfGuard(csrf *CSRFManager, skipAnonymous bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Session == nil {
			if skipAnonymous {
				return c.Next()
			}
			return csrfRejected()
		}

		token := c.Get(CSRFHeader)
		if token == "" {
			token = c.FormValue(CSRFFormField)
		}
		if err := csrf.Verify(token, principal.Session.ID); err != nil {
			return csrfRejected()
		}
		return c.Next()
	}
}

func csrfRejected() error {
	return apperrors.NewDomainError(apperrors.CodeInvalidRequest, "invalid request", fiber.StatusForbidden, nil)
}
