package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Anti-forgery tokens are short-lived signed tokens bound to the visitor
// session ID. They are handed out with a challenge (or the admin
// settings page) and must accompany any state-changing submission.

const csrfTokenTTL = 2 * time.Hour

var errCSRFMismatch = errors.New("csrf token does not match session")

// NewCSRFToken issues an anti-forgery token for the session.
func NewCSRFToken(secret, sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(csrfTokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// CheckCSRFToken validates the token signature, expiry and session binding.
func CheckCSRFToken(secret, token, sessionID string) error {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	if !parsed.Valid || claims.Subject != sessionID {
		return errCSRFMismatch
	}
	return nil
}
