package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/insurance4you/agency/internal/core"
	"github.com/insurance4you/agency/pkg/problem"
)

type ctxKey string

const (
	ctxKeyNRIC ctxKey = "auth_nric"
	ctxKeyRole ctxKey = "auth_role"
)

// Claims carried in access tokens. NRIC is the subject; Role gates routes.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 access token for the authenticated user.
func IssueToken(secret string, ttl time.Duration, nric string, role core.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   nric,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Authenticate validates the bearer token and stores the caller's NRIC and
// role in the request context.
func Authenticate(secret string) func(http.Handler) http.Handler {
	keyFunc := func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				problem.Write(w, http.StatusUnauthorized, "Unauthorized", "Missing bearer token")
				return
			}

			var claims Claims
			token, err := jwt.ParseWithClaims(strings.TrimPrefix(auth, "Bearer "), &claims, keyFunc)
			if err != nil || !token.Valid {
				problem.Write(w, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyNRIC, claims.Subject)
			ctx = context.WithValue(ctx, ctxKeyRole, core.Role(claims.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose token role is not in the allowed set.
// Must run after Authenticate.
func RequireRole(roles ...core.Role) func(http.Handler) http.Handler {
	allowed := make(map[core.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(ctxKeyRole).(core.Role)
			if !ok {
				problem.Write(w, http.StatusUnauthorized, "Unauthorized", "Missing authentication")
				return
			}
			if !allowed[role] {
				problem.Write(w, http.StatusForbidden, "Forbidden", "Insufficient role for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CallerNRIC returns the authenticated caller's NRIC, "" when unauthenticated.
func CallerNRIC(ctx context.Context) string {
	nric, _ := ctx.Value(ctxKeyNRIC).(string)
	return nric
}

// CallerRole returns the authenticated caller's role.
func CallerRole(ctx context.Context) core.Role {
	role, _ := ctx.Value(ctxKeyRole).(core.Role)
	return role
}
