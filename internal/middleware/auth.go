package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthCookieName is the administrator auth cookie.
const AuthCookieName = "auth_token"

const authTokenTTL = 24 * time.Hour

type contextKey string

const adminIDKey contextKey = "admin_id"

type authClaims struct {
	jwt.RegisteredClaims
	AdminID int64 `json:"aid"`
}

// SetLoginCookie issues a signed auth cookie for the administrator.
func SetLoginCookie(w http.ResponseWriter, adminID int64, secret string) error {
	now := time.Now()
	claims := authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(authTokenTTL)),
		},
		AdminID: adminID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   secureCookies,
	})
	return nil
}

// WithAuth puts the admin ID from a valid auth cookie into the request
// context. Requests without a valid cookie pass through anonymous;
// handlers that need an admin check the context.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(AuthCookieName); err == nil {
				claims := &authClaims{}
				token, err := jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (interface{}, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
					}
					return []byte(secret), nil
				})
				if err == nil && token.Valid {
					r = r.WithContext(context.WithValue(r.Context(), adminIDKey, claims.AdminID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetAdminIDFromContext returns the authenticated admin ID, if any.
func GetAdminIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(adminIDKey).(int64)
	return id, ok
}
