package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/portalworks/portal-auth/internal/api/dto"
	"github.com/portalworks/portal-auth/internal/auth"
	"github.com/portalworks/portal-auth/internal/domain"
	"github.com/portalworks/portal-auth/internal/service"
	apperrors "github.com/portalworks/portal-auth/pkg/util/errorutil"
)

// AuthAPI is the slice of the auth service the HTTP layer needs.
type AuthAPI interface {
	Register(ctx context.Context, in service.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)
	Logout(ctx context.Context, token string, client domain.ClientInfo) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string, client domain.ClientInfo) error
	RequestPasswordReset(ctx context.Context, email string, client domain.ClientInfo) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string, client domain.ClientInfo) error
	CSRFToken(principal *auth.Principal) (string, error)
	Preferences(ctx context.Context, userID string) (*domain.UserPreferences, error)
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler exposes login, registration and session endpoints.
type AuthHandler struct {
	auth   AuthAPI
	tokens *auth.AuthMiddleware
	cookie CookieConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService AuthAPI, tokens *auth.AuthMiddleware, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: authService, tokens: tokens, cookie: cookie}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        domain.Role(req.Role),
		Client:      clientInfo(c),
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user":              dto.NewUserResponse(user),
			"requires_approval": user.Status == domain.UserStatusPending,
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), service.LoginInput{
		Identity: req.Identity,
		Password: req.Password,
		Remember: req.Remember,
		Client:   clientInfo(c),
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(c, result.Token, result.ExpiresAt, req.Remember)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(result.User),
			"auth": dto.AuthResponse{
				Token:     result.Token,
				ExpiresAt: result.ExpiresAt,
				CSRFToken: result.CSRFToken,
				Redirect:  auth.RedirectFor(result.User.Role),
			},
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext(), h.tokens.TokenFromRequest(c), clientInfo(c)); err != nil {
		return err
	}
	h.clearSessionCookie(c)
	return c.JSON(fiber.Map{"data": fiber.Map{"redirect": "/login"}})
}

// Session handles GET /auth/session and returns a fresh CSRF token.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	csrf, err := h.auth.CSRFToken(principal)
	if err != nil {
		return err
	}
	prefs, err := h.auth.Preferences(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user":        dto.NewUserResponse(principal.User),
			"preferences": dto.NewPreferencesResponse(prefs),
			"expires_at":  principal.Session.ExpiresAt,
			"csrf_token":  csrf,
		},
	})
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.UserContext(), principal.User.ID, req.CurrentPassword, req.NewPassword, clientInfo(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_changed"}})
}

// RequestPasswordReset handles POST /auth/password/reset/request.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	if err := h.auth.RequestPasswordReset(c.UserContext(), req.Email, clientInfo(c)); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"status": "if the account exists, reset instructions were sent"},
	})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword, clientInfo(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_reset", "redirect": "/login"}})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string, expiresAt time.Time, persistent bool) {
	cookie := &fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if persistent {
		cookie.Expires = expiresAt
	} else {
		cookie.SessionOnly = true
	}
	c.Cookie(cookie)
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
}

func clientInfo(c *fiber.Ctx) domain.ClientInfo {
	return domain.ClientInfo{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}
