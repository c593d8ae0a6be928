package handlers

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/portalworks/portal-auth/internal/api/dto"
	"github.com/portalworks/portal-auth/internal/auth"
	"github.com/portalworks/portal-auth/internal/domain"
	apperrors "github.com/portalworks/portal-auth/pkg/util/errorutil"
)

// ProfileAPI is the self-service profile surface.
type ProfileAPI interface {
	ReplacePhoto(ctx context.Context, user *domain.User, filename string, r io.Reader, client domain.ClientInfo) (string, error)
	Activity(ctx context.Context, userID string, limit int) ([]domain.ActivityLogEntry, error)
}

// ProfileHandler exposes /me endpoints.
type ProfileHandler struct {
	profiles ProfileAPI
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profiles ProfileAPI) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// UploadPhoto handles PUT /me/photo with a multipart "photo" field.
func (h *ProfileHandler) UploadPhoto(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		return apperrors.NewValidationError("photo file required", nil)
	}
	f, err := fh.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable upload", nil)
	}
	defer f.Close()

	key, err := h.profiles.ReplacePhoto(c.UserContext(), principal.User, fh.Filename, f, clientInfo(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"photo_key": key}})
}

// Activity handles GET /me/activity?limit=100.
func (h *ProfileHandler) Activity(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	entries, err := h.profiles.Activity(c.UserContext(), principal.User.ID, c.QueryInt("limit", 100))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewActivityResponse(entries)})
}
