package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/industryverse/backend/internal/apperr"
	"github.com/industryverse/backend/internal/auth"
	"github.com/industryverse/backend/internal/store"
)

// Identity is the verified caller, threaded through the request context as
// an immutable value.
type Identity struct {
	UserID string
	Role   string
}

type contextKey struct{}

var identityKey contextKey

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			h.writeError(w, apperr.Unauthorized("No token provided"))
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ValidateJWT(h.cfg.JWTSecret, tokenString)
		if err != nil {
			h.writeError(w, apperr.Unauthorized("Invalid or expired token"))
			return
		}

		identity := Identity{UserID: claims.UserID, Role: claims.Role}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	})
}

func (h *APIHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok || identity.Role != store.RoleAdmin {
			h.writeError(w, apperr.Forbidden("Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
