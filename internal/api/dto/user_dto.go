package dto

import (
	"strings"
	"time"

	"github.com/portalworks/portal-auth/internal/domain"
	apperrors "github.com/portalworks/portal-auth/pkg/util/errorutil"
)

// UserRegisterRequest payload for new accounts.
type UserRegisterRequest struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	DisplayName     string `json:"display_name" form:"display_name"`
	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm"`
	Role            string `json:"role,omitempty" form:"role"`
}

// Validate checks presence and the confirmation match before the service sees the request.
func (r UserRegisterRequest) Validate() error {
	details := map[string]any{}
	if strings.TrimSpace(r.Username) == "" {
		details["username"] = "required"
	}
	if strings.TrimSpace(r.Email) == "" {
		details["email"] = "required"
	}
	if r.Password == "" {
		details["password"] = "required"
	}
	if r.Password != r.PasswordConfirm {
		details["password_confirm"] = "does not match"
	}
	if r.Role != "" && r.Role != string(domain.RoleUser) && r.Role != string(domain.RoleStudent) {
		details["role"] = "must be user or student"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid registration", details)
	}
	return nil
}

// UserLoginRequest payload for login. Identity is a username or email.
type UserLoginRequest struct {
	Identity string `json:"identity" form:"identity"`
	Password string `json:"password" form:"password"`
	Remember bool   `json:"remember" form:"remember"`
}

// Validate checks required fields.
func (r UserLoginRequest) Validate() error {
	if strings.TrimSpace(r.Identity) == "" || r.Password == "" {
		return apperrors.NewValidationError("identity and password required", nil)
	}
	return nil
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	PhotoKey    string    `json:"photo_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUserResponse maps a domain user, dropping the password hash.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		Status:      string(u.Status),
		PhotoKey:    u.PhotoKey,
		CreatedAt:   u.CreatedAt,
	}
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CSRFToken string    `json:"csrf_token"`
	Redirect  string    `json:"redirect"`
}
