package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/remi/owc-fantasy/internal/api/middleware"
	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type CallbackRequest struct {
	Code string `json:"code"`
}

type RefreshRequest struct {
	OsuID        int64  `json:"osuId"`
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type UserResponse struct {
	OsuID     int64  `json:"osuId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
	Score     int    `json:"score"`
}

// AuthorizeURL hands the frontend the osu! consent page URL.
func (h *AuthHandler) AuthorizeURL(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"url": h.authService.AuthorizeURL(state),
	})
}

// Callback finishes the osu! OAuth flow with the authorization code.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var req CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Code == "" {
		http.Error(w, "Authorization code is required", http.StatusBadRequest)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Code)
	if err != nil {
		http.Error(w, "Login failed", http.StatusUnauthorized)
		return
	}
	writeAuthResponse(w, result)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.authService.RefreshTokens(r.Context(), req.OsuID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeAuthResponse(w, result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	osuID, ok := middleware.GetUserOsuID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.authService.GetUser(r.Context(), osuID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(UserResponse{
		OsuID:     user.OsuID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
		Score:     user.Score,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	osuID, ok := middleware.GetUserOsuID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.authService.Logout(r.Context(), osuID); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeAuthResponse(w http.ResponseWriter, result *service.AuthResult) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{
		User: UserResponse{
			OsuID:     result.User.OsuID,
			Username:  result.User.Username,
			AvatarURL: result.User.AvatarURL,
			Score:     result.User.Score,
		},
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}
