package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/Chikothe3rd/campuseats/internal/service"
)

type AuthService interface {
	// Register creates a new principal and returns it with a session token
	Register(ctx context.Context, req service.RegisterRequest) (*models.User, string, error)
	// Login verifies credentials and returns the principal with a session token
	Login(ctx context.Context, email, password string) (*models.User, string, error)
}

// UserHandler represents HTTP handler for identity-related requests
type UserHandler struct {
	svc AuthService
}

// NewUserHandler creates new UserHandler instance
func NewUserHandler(svc AuthService) *UserHandler {
	return &UserHandler{svc: svc}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// setAuthCookie attaches the session token to the response
func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}

// RegisterUser registers new user
// 200 — пользователь успешно зарегистрирован и аутентифицирован;
// 400 — неверный формат запроса;
// 409 — логин уже занят;
// 500 — внутренняя ошибка сервера.
func (uh *UserHandler) RegisterUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		user, token, err := uh.svc.Register(r.Context(), service.RegisterRequest{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Phone:    req.Phone,
			Role:     req.Role,
		})
		if err != nil {
			switch {
			case errors.Is(err, models.ErrUserExists):
				http.Error(w, "user already exists", http.StatusConflict)
			case errors.Is(err, models.ErrInvalidEmail),
				errors.Is(err, models.ErrWeakPassword),
				errors.Is(err, models.ErrInvalidRole):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		setAuthCookie(w, token)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(userResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		}); err != nil {
			return
		}
	}
}

// LoginUser authenticates user
// 200 — пользователь успешно аутентифицирован;
// 400 — неверный формат запроса;
// 401 — неверная пара логин/пароль;
// 500 — внутренняя ошибка сервера.
func (uh *UserHandler) LoginUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		user, token, err := uh.svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidCredentials):
				http.Error(w, "invalid login or password", http.StatusUnauthorized)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		setAuthCookie(w, token)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(userResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		}); err != nil {
			return
		}
	}
}
