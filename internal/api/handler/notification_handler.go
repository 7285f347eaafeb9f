package handler

import (
	"net/http"
	"strconv"

	"codecamp/internal/api/middleware"
	"codecamp/internal/app/service"
	"codecamp/internal/common"
	"codecamp/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(ns *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.list)
	r.Post("/{notificationID}/read", h.markRead)
}

// RegisterAdminRoutes mounts the failure log; callers apply AdminOnly.
func (h *NotificationHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/notification-failures", h.failures)
}

func limitParam(r *http.Request, def, maxLimit int) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func (h *NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	items, err := h.notificationService.List(r.Context(), userID, limitParam(r, 20, 100))
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	if items == nil {
		items = []model.Notification{}
	}
	common.RespondWithJSON(w, http.StatusOK, items)
}

func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	if err := h.notificationService.MarkRead(r.Context(), userID, chi.URLParam(r, "notificationID")); err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) failures(w http.ResponseWriter, r *http.Request) {
	items, err := h.notificationService.RecentFailures(r.Context(), limitParam(r, 50, 200))
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	if items == nil {
		items = []model.TaskFailure{}
	}
	common.RespondWithJSON(w, http.StatusOK, items)
}
