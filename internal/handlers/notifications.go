package handlers

import (
	"net/http"

	"marketplace/internal/auth"
	"marketplace/internal/middleware"
	"marketplace/internal/notify"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := parsePaging(r)
	notifications, err := h.notifications.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list notifications")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	notificationID := chi.URLParam(r, "id")
	rows, err := h.notifications.MarkRead(r.Context(), notificationID, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to mark notification read")
		return
	}
	if rows == 0 {
		respondError(w, http.StatusNotFound, "notification not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// WSNotifications upgrades to a websocket stream of notifications. Browsers
// cannot set an Authorization header on the upgrade request, so the token
// rides in a query parameter.
func (h *Handler) WSNotifications(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	notify.ServeWS(w, r, h.hub, claims.UserID)
}
