package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrCSRFMismatch is returned for any anti-forgery token that fails verification.
var ErrCSRFMismatch = errors.New("csrf token mismatch")

// CSRFManager issues anti-forgery tokens bound to a session.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager builds a new manager.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// CSRFClaims describes the token payload.
type CSRFClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Issue signs a token for the session that expires with it.
func (m *CSRFManager) Issue(sessionID string, sessionExpiresAt, now time.Time) (string, error) {
	claims := &CSRFClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(sessionExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify checks signature and expiry, then compares the bound session id in constant time.
func (m *CSRFManager) Verify(tokenStr, sessionID string) error {
	if tokenStr == "" || sessionID == "" {
		return ErrCSRFMismatch
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &CSRFClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return ErrCSRFMismatch
	}
	claims, ok := parsed.Claims.(*CSRFClaims)
	if !ok || !parsed.Valid {
		return ErrCSRFMismatch
	}
	if subtle.ConstantTimeCompare([]byte(claims.SessionID), []byte(sessionID)) != 1 {
		return ErrCSRFMismatch
	}
	return nil
}
