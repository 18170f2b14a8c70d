package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/remi/owc-fantasy/internal/api/middleware"
	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/service"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboardService.Leaderboard(r.Context())
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// GetWeekScore breaks down the caller's score for one week.
func (h *LeaderboardHandler) GetWeekScore(w http.ResponseWriter, r *http.Request) {
	osuID, ok := middleware.GetUserOsuID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil || week < 0 {
		http.Error(w, "Invalid week", http.StatusBadRequest)
		return
	}

	rec, err := h.leaderboardService.WeekScore(r.Context(), osuID, week)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			http.Error(w, "No score for that week", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}
