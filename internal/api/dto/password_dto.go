package dto

import apperrors "github.com/portalworks/portal-auth/pkg/util/errorutil"

// PasswordResetRequest payload for initiating reset.
type PasswordResetRequest struct {
	Email string `json:"email" form:"email"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token              string `json:"token" form:"token"`
	NewPassword        string `json:"new_password" form:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm" form:"new_password_confirm"`
}

// Validate checks required fields and confirmation.
func (r PasswordResetConfirmRequest) Validate() error {
	if r.Token == "" || r.NewPassword == "" {
		return apperrors.NewValidationError("token and new password required", nil)
	}
	if r.NewPassword != r.NewPasswordConfirm {
		return apperrors.NewValidationError("invalid password reset", map[string]any{"new_password_confirm": "does not match"})
	}
	return nil
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword    string `json:"current_password" form:"current_password"`
	NewPassword        string `json:"new_password" form:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm" form:"new_password_confirm"`
}

// Validate checks required fields and confirmation.
func (r PasswordChangeRequest) Validate() error {
	if r.CurrentPassword == "" || r.NewPassword == "" {
		return apperrors.NewValidationError("current and new password required", nil)
	}
	if r.NewPassword != r.NewPasswordConfirm {
		return apperrors.NewValidationError("invalid password change", map[string]any{"new_password_confirm": "does not match"})
	}
	return nil
}

// StatusUpdateRequest payload for admin status changes.
type StatusUpdateRequest struct {
	Status string `json:"status" form:"status"`
}
