package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/Chikothe3rd/campuseats/internal/retry"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserRepository is interface for interacting with user-related data
type UserRepository interface {
	// CreateUser inserts new user to database
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByEmail returns user by email
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns user by id
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthService implements AuthService interface
type AuthService struct {
	repo      UserRepository
	token     TokenService
	retryOpts retry.Options
}

// NewAuthService creates new AuthService instance
func NewAuthService(repo UserRepository, token TokenService) *AuthService {
	return &AuthService{
		repo:      repo,
		token:     token,
		retryOpts: retry.DefaultOptions(),
	}
}

// RegisterRequest is a sign-up command
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Role     string
}

// Register creates a new principal and returns it with a session token.
func (as *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailRe.MatchString(email) {
		return nil, "", models.ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLen {
		return nil, "", models.ErrWeakPassword
	}
	if !models.IsValidRole(req.Role) {
		return nil, "", models.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
	}

	created, err := retry.Do(ctx, as.retryOpts, func(ctx context.Context) (*models.User, error) {
		return as.repo.CreateUser(ctx, &user)
	})
	if err != nil {
		if errors.Is(err, models.ErrConflictData) {
			return nil, "", models.ErrUserExists
		}
		return nil, "", err
	}

	token, err := as.token.CreateToken(created)
	if err != nil {
		return nil, "", err
	}

	return created, token, nil
}

// Login verifies credentials and returns the principal with a session token.
func (as *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := retry.Do(ctx, as.retryOpts, func(ctx context.Context) (*models.User, error) {
		return as.repo.GetUserByEmail(ctx, email)
	})
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return nil, "", models.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", models.ErrInvalidCredentials
	}

	token, err := as.token.CreateToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}
