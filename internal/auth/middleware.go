package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/portalworks/portal-auth/internal/domain"
	apperrors "github.com/portalworks/portal-auth/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller for the current request.
type Principal struct {
	User    *domain.User
	Session *domain.Session
}

// HasRole reports whether the caller holds one of roles.
func (p *Principal) HasRole(roles ...domain.Role) bool {
	if p == nil || p.User == nil {
		return false
	}
	for _, role := range roles {
		if p.User.Role == role {
			return true
		}
	}
	return false
}

// SessionValidator resolves a raw session token to a principal.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*Principal, error)
}

// AuthMiddleware validates session tokens and loads principals.
type AuthMiddleware struct {
	sessions   SessionValidator
	cookieName string
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions SessionValidator, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, cookieName: cookieName}
}

// RequireAuthenticated rejects requests without a valid session.
func (m *AuthMiddleware) RequireAuthenticated(c *fiber.Ctx) error {
	token := m.TokenFromRequest(c)
	if token == "" {
		return apperrors.NewUnauthorized("authentication required")
	}

	principal, err := m.sessions.ValidateSession(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// OptionalAuthenticated loads the principal when the request carries a valid
// session and otherwise continues anonymously.
func (m *AuthMiddleware) OptionalAuthenticated(c *fiber.Ctx) error {
	token := m.TokenFromRequest(c)
	if token == "" {
		return c.Next()
	}
	if principal, err := m.sessions.ValidateSession(c.UserContext(), token); err == nil {
		c.Locals(principalKey, principal)
	}
	return c.Next()
}

// TokenFromRequest reads the session cookie, falling back to a bearer header.
func (m *AuthMiddleware) TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(m.cookieName); token != "" {
		return token
	}
	authHeader := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
