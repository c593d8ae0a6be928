package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/portalworks/portal-auth/internal/api/dto"
	"github.com/portalworks/portal-auth/internal/auth"
	"github.com/portalworks/portal-auth/internal/domain"
	apperrors "github.com/portalworks/portal-auth/pkg/util/errorutil"
)

// AccountAPI is the admin account surface.
type AccountAPI interface {
	ListByStatus(ctx context.Context, actor *auth.Principal, status domain.UserStatus, limit, offset int) ([]domain.User, error)
	SetStatus(ctx context.Context, actor *auth.Principal, userID string, status domain.UserStatus, client domain.ClientInfo) (*domain.User, error)
}

// AccountHandler exposes admin account endpoints.
type AccountHandler struct {
	accounts AccountAPI
}

// NewAccountHandler constructs handler.
func NewAccountHandler(accounts AccountAPI) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// List handles GET /admin/users?status=pending.
func (h *AccountHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	status := domain.UserStatus(c.Query("status", string(domain.UserStatusPending)))
	users, err := h.accounts.ListByStatus(c.UserContext(), principal, status, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// UpdateStatus handles PATCH /admin/users/:id/status.
func (h *AccountHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	userID := c.Params("id")
	if _, err := uuid.Parse(userID); err != nil {
		return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
	}
	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	user, err := h.accounts.SetStatus(c.UserContext(), principal, userID, domain.UserStatus(req.Status), clientInfo(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
