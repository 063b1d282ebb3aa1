package auth

import (
	"context"
	"net/http"
	"strings"
)

type claimsKey struct{}

// Middleware returns an http.Handler middleware that extracts a JWT from the
// "token" cookie (preferred) or the Authorization Bearer header. If valid,
// the parsed SessionClaims are injected into the request context.
// Invalid or missing tokens are silently ignored — enforcement happens on the
// route groups that require a session.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string

			if c, err := r.Cookie("token"); err == nil && c.Value != "" {
				tokenStr = c.Value
			}
			if tokenStr == "" {
				if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
					tokenStr = h[len("Bearer "):]
				}
			}

			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := ValidateToken(secret, tokenStr)
			if err != nil {
				// Clear invalid cookie so the client re-authenticates.
				http.SetCookie(w, &http.Cookie{Name: "token", MaxAge: -1, Path: "/"})
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims retrieves the session claims from the request context, or nil
// when the request carries no valid session.
func GetClaims(ctx context.Context) *SessionClaims {
	c, _ := ctx.Value(claimsKey{}).(*SessionClaims)
	return c
}
