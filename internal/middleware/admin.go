package middleware

import (
	"context"
	"net/http"

	"marketplace/internal/models"
)

type UserRoleStore interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
}

func RequireAdmin(users UserRoleStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				denyJSON(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				denyJSON(w, http.StatusInternalServerError, "unable to verify admin")
				return
			}
			if user.Role != models.RoleAdmin {
				denyJSON(w, http.StatusForbidden, "admin privileges required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
