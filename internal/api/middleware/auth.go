package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/remi/owc-fantasy/internal/service"
)

type contextKey string

const (
	UserOsuIDKey contextKey = "userOsuID"
)

func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Printf("ERROR [middleware.Auth] missing authorization header")
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Printf("ERROR [middleware.Auth] invalid authorization header format")
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := authService.ValidateToken(parts[1])
			if err != nil {
				log.Printf("ERROR [middleware.Auth] token validation failed: %v", err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			// JSON numbers decode as float64 in MapClaims.
			sub, ok := (*claims)["sub"].(float64)
			if !ok {
				log.Printf("ERROR [middleware.Auth] missing 'sub' claim in token")
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserOsuIDKey, int64(sub))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserOsuID(ctx context.Context) (int64, bool) {
	osuID, ok := ctx.Value(UserOsuIDKey).(int64)
	return osuID, ok
}
