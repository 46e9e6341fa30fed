package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Chikothe3rd/campuseats/internal/auth"
	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	token := auth.NewAuthToken([]byte("test-signing-key"))

	signed, err := token.CreateToken(&models.User{ID: "u1", Role: models.RoleBuyer})
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r.Context())
		require.True(t, ok)
		assert.Equal(t, "u1", actor.UserID)
		assert.Equal(t, models.RoleBuyer, actor.Role)
		w.WriteHeader(http.StatusOK)
	})

	protected := AuthMiddleware(token)(next)

	t.Run("valid cookie passes the payload through", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		r.AddCookie(&http.Cookie{Name: "auth_token", Value: signed})
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		r.AddCookie(&http.Cookie{Name: "auth_token", Value: "not-a-jwt"})
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		other := auth.NewAuthToken([]byte("different-key"))
		forged, err := other.CreateToken(&models.User{ID: "u1", Role: models.RoleBuyer})
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		r.AddCookie(&http.Cookie{Name: "auth_token", Value: forged})
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
