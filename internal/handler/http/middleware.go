package handler

import (
	"context"
	"net/http"

	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/Chikothe3rd/campuseats/internal/service"
)

type contextKey string

const (
	authPayloadKey contextKey = "auth_payload"
)

// AuthMiddleware gets the token from the cookie and passes its payload to the context
func AuthMiddleware(ts service.TokenService) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("auth_token")
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			payload, err := ts.VerifyToken(cookie.Value)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authPayloadKey, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// getAuthPayload extracts authorization token payload from context
func getAuthPayload(ctx context.Context, key contextKey) (*models.TokenPayload, bool) {
	payload, ok := ctx.Value(key).(*models.TokenPayload)
	return payload, ok
}

// actorFrom builds the acting principal from the request context
func actorFrom(ctx context.Context) (models.Actor, bool) {
	payload, ok := getAuthPayload(ctx, authPayloadKey)
	if !ok || payload == nil {
		return models.Actor{}, false
	}
	return models.Actor{UserID: payload.UserID, Role: payload.Role}, true
}
