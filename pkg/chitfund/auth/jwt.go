package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const devSecret = "chitfund-dev-secret-change-in-production"

var (
	mu            sync.RWMutex
	signingKey    = []byte(devSecret)
	tokenDuration = 24 * time.Hour
)

// Claims represents the JWT claims. They carry the whole session user.
type Claims struct {
	UserID   string      `json:"user_id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	Role     models.Role `json:"role"`
	MemberID string      `json:"member_id,omitempty"`
	jwt.RegisteredClaims
}

// Configure sets the signing secret and token lifetime. Empty or zero
// values keep the current setting.
func Configure(secret string, ttl time.Duration) {
	mu.Lock()
	defer mu.Unlock()

	if secret != "" {
		signingKey = []byte(secret)
	}
	if ttl > 0 {
		tokenDuration = ttl
	}
}

func getJWTSecret() []byte {
	mu.RLock()
	defer mu.RUnlock()
	return signingKey
}

func getTokenDuration() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return tokenDuration
}

// GenerateToken creates a new JWT token for a session user
func GenerateToken(user models.User) (string, error) {
	claims := &Claims{
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Phone:    user.Phone,
		Role:     user.Role,
		MemberID: user.MemberID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(getTokenDuration())),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "chitfund",
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTSecret())
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return getJWTSecret(), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// User rebuilds the session user from the claims
func (c *Claims) User() models.User {
	return models.User{
		ID:       c.UserID,
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		Role:     c.Role,
		MemberID: c.MemberID,
	}
}
