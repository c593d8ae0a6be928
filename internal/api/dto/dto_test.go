package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/portalworks/portal-auth/pkg/util/errorutil"
)

func TestUserRegisterRequestValidate(t *testing.T) {
	ok := UserRegisterRequest{Username: "alice", Email: "alice@x.com", Password: "Str0ng!Pass", PasswordConfirm: "Str0ng!Pass"}
	assert.NoError(t, ok.Validate())

	mismatch := ok
	mismatch.PasswordConfirm = "other"
	err := mismatch.Validate()
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
	assert.Contains(t, apperrors.ToDomainError(err).Details, "password_confirm")

	admin := ok
	admin.Role = "admin"
	assert.Contains(t, apperrors.ToDomainError(admin.Validate()).Details, "role")

	empty := UserRegisterRequest{}
	details := apperrors.ToDomainError(empty.Validate()).Details
	assert.Contains(t, details, "username")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestUserLoginRequestValidate(t *testing.T) {
	assert.NoError(t, UserLoginRequest{Identity: "alice", Password: "x"}.Validate())
	assert.Error(t, UserLoginRequest{Identity: "  ", Password: "x"}.Validate())
	assert.Error(t, UserLoginRequest{Identity: "alice"}.Validate())
}

func TestPasswordChangeRequestValidate(t *testing.T) {
	assert.NoError(t, PasswordChangeRequest{CurrentPassword: "a", NewPassword: "b", NewPasswordConfirm: "b"}.Validate())
	assert.Error(t, PasswordChangeRequest{CurrentPassword: "a", NewPassword: "b", NewPasswordConfirm: "c"}.Validate())
	assert.Error(t, PasswordResetConfirmRequest{NewPassword: "b", NewPasswordConfirm: "b"}.Validate())
}
