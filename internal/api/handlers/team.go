package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/remi/owc-fantasy/internal/api/middleware"
	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/service"
)

type TeamHandler struct {
	teamService *service.TeamService
}

func NewTeamHandler(teamService *service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	osuID, ok := middleware.GetUserOsuID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := h.teamService.GetTeam(r.Context(), osuID)
	if err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			http.Error(w, "Team not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

func (h *TeamHandler) Save(w http.ResponseWriter, r *http.Request) {
	osuID, ok := middleware.GetUserOsuID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input service.SaveTeamInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	view, err := h.teamService.SaveTeam(r.Context(), osuID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRosterTooLarge),
			errors.Is(err, domain.ErrBudgetExceeded),
			errors.Is(err, domain.ErrDuplicatePlayer),
			errors.Is(err, domain.ErrUnknownPlayer),
			errors.Is(err, domain.ErrUnknownBooster),
			errors.Is(err, domain.ErrBoosterReused),
			errors.Is(err, domain.ErrBoosterOffRoster):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}
