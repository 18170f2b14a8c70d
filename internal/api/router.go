package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/remi/owc-fantasy/internal/api/handlers"
	"github.com/remi/owc-fantasy/internal/api/middleware"
	"github.com/remi/owc-fantasy/internal/service"
	"github.com/remi/owc-fantasy/internal/websocket"
)

func NewRouter(services *service.Services, hub *websocket.Hub) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	playerHandler := handlers.NewPlayerHandler(services.Player)
	teamHandler := handlers.NewTeamHandler(services.Team)
	leaderboardHandler := handlers.NewLeaderboardHandler(services.Leaderboard)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Get("/authorize", authHandler.AuthorizeURL)
			r.Post("/callback", authHandler.Callback)
			r.Post("/refresh", authHandler.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Public read surfaces
		r.Route("/players", func(r chi.Router) {
			r.Get("/", playerHandler.GetAll)
			r.Get("/week/{week}", playerHandler.GetWeek)
		})
		r.Get("/boosters", playerHandler.GetBoosters)
		r.Get("/leaderboard", leaderboardHandler.Get)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/team", func(r chi.Router) {
				r.Get("/", teamHandler.Get)
				r.Put("/", teamHandler.Save)
			})
			r.Get("/scores/week/{week}", leaderboardHandler.GetWeekScore)
		})
	})

	// WebSocket endpoint
	r.Get("/ws", wsHandler.Handle)

	return r
}
