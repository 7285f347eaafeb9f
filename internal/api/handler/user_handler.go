package handler

import (
	"net/http"

	"codecamp/internal/api/middleware"
	"codecamp/internal/app/service"
	"codecamp/internal/common"
	"codecamp/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 100
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(us *service.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/leaderboard", h.leaderboard)
	r.With(middleware.Authenticator).Get("/users/me", h.me)
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	user, err := h.userService.Profile(r.Context(), userID)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := limitParam(r, defaultLeaderboardLimit, maxLeaderboardLimit)

	entries, err := h.userService.Leaderboard(r.Context(), limit)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}
