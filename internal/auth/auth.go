package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenGenerator creates and validates access tokens.
type TokenGenerator interface {
	GenerateAccessToken(u *User) (token string, claims *Claims, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error)
	GetUserWithPermissions(ctx context.Context, username string) (*User, error)
	Logout(ctx context.Context, claims *Claims) error
}

type RepositoryAPI interface {
	GetPasswordHash(ctx context.Context, username string) (string, error)
	GetUserWithPermissions(ctx context.Context, username string) (*User, error)
}

// Claims represents JWT token claims. The role is informational: authorization
// always uses the stored role loaded by the middleware.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	StoreID  string `json:"store_id,omitempty"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
	Issuer         string
}

// LoginResponse is returned by POST /api/login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}
