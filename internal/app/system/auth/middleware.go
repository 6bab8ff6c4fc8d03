package auth

import (
	"context"
	"net/http"

	"github.com/dalemusser/greenledger/internal/app/system/respond"
	"go.uber.org/zap"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// Verifier is the part of Tokens the middleware needs.
type Verifier interface {
	Verify(raw string) (*Claims, error)
}

// ClaimsFrom returns the verified claims placed on ctx by RequireBearer.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// RequireBearer verifies the Authorization header before the wrapped handler
// runs. Without a valid token the chain stops with 401 {"message":"Unauthorized"}.
func RequireBearer(v Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				respond.Unauthorized(w)
				return
			}
			claims, err := v.Verify(raw)
			if err != nil {
				log.Debug("bearer token rejected",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				respond.Unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
