package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	wrapped := fmt.Errorf("login: %w", NewInvalidCredentials())
	assert.Equal(t, CodeInvalidCredentials, ToDomainError(wrapped).Code)

	assert.Equal(t, http.StatusNotFound, ToDomainError(pgx.ErrNoRows).HTTPStatus)

	internal := ToDomainError(errors.New("boom"))
	assert.Equal(t, CodeInternal, internal.Code)
	assert.Equal(t, "internal server error", internal.Message)
}

func TestStoreUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	err := NewStoreUnavailable(cause)

	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, ToDomainError(err).Message, "10.0.0.5")
	assert.True(t, HasCode(err, CodeStoreUnavailable))
	assert.False(t, HasCode(cause, CodeStoreUnavailable))
}

func TestWeakPasswordDetails(t *testing.T) {
	err := ToDomainError(NewWeakPassword([]string{"digit", "symbol"}))
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, []string{"digit", "symbol"}, err.Details["violations"])
}
