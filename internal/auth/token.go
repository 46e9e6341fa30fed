package auth

import (
	"errors"
	"time"

	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

const tokenLifetime = 24 * time.Hour

var errInvalidToken = errors.New("invalid auth token")

type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Role   string `json:"role"`
}

// AuthToken issues and verifies signed session tokens
type AuthToken struct {
	key []byte
}

// NewAuthToken creates new AuthToken instance
func NewAuthToken(key []byte) *AuthToken {
	return &AuthToken{key: key}
}

// CreateToken creates signed token for user
func (t *AuthToken) CreateToken(user *models.User) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
		UserID: user.ID,
		Role:   user.Role,
	})

	return token.SignedString(t.key)
}

// VerifyToken verifies token string and extracts payload
func (t *AuthToken) VerifyToken(tokenString string) (*models.TokenPayload, error) {
	var c claims

	token, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return t.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errInvalidToken
	}

	return &models.TokenPayload{
		UserID: c.UserID,
		Role:   c.Role,
	}, nil
}
