package adminapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// claims is the single claim set minted and checked by this package: a
// bearer token good for exactly one admin, expiring after the
// configured TTL. There is no refresh; a new token is issued by
// IssueToken each time one is needed.
type claims struct {
	Admin string `json:"admin"`
	jwt.RegisteredClaims
}

// IssueToken mints an HS256 bearer token for admin, valid for ttl. The
// same secret passed here must be passed to requireBearer for the
// token to validate.
func IssueToken(secret []byte, admin string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(secret)
}

// requireBearer wraps next with a middleware that rejects any request
// lacking a valid "Authorization: Bearer <token>" header signed with
// secret. The authenticated admin name is attached to the request
// context under adminContextKey for handlers that want it (the audit
// trail).
func requireBearer(secret []byte, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			writeError(rw, http.StatusUnauthorized, "missing bearer token")
			return
		}

		token, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			writeError(rw, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c := token.Claims.(*claims)
		r = r.WithContext(withAdmin(r.Context(), c.Admin))
		next.ServeHTTP(rw, r)
	})
}

type contextKey int

const adminContextKeyValue contextKey = 0

func withAdmin(ctx context.Context, admin string) context.Context {
	return context.WithValue(ctx, adminContextKeyValue, admin)
}

func adminFromContext(ctx context.Context) string {
	v, _ := ctx.Value(adminContextKeyValue).(string)
	return v
}
