package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// VisitorCookieName carries the opaque visitor session ID that keys the
// unlock ledger. Cache layers must be configured to bypass on it.
const VisitorCookieName = "woo_protect_session"

const sessionIDKey contextKey = "session_id"

// WithVisitor ensures every request carries a visitor session ID: an
// existing valid cookie is reused, otherwise a fresh UUID is minted and
// set on the response.
func WithVisitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sid string
		if c, err := r.Cookie(VisitorCookieName); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				sid = c.Value
			}
		}
		if sid == "" {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     VisitorCookieName,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				Secure:   secureCookies,
			})
		}
		ctx := context.WithValue(r.Context(), sessionIDKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionIDFromContext returns the visitor session ID.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionIDKey).(string)
	return sid, ok
}
