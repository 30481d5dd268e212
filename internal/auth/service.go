package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/core/common/validation"
	"github.com/frahmantamala/warehouse-management/internal/core/events"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

// Service is the main auth service with dependencies
type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGenerator
	revoker        TokenRevoker
	publisher      events.Publisher
	logger         *slog.Logger
}

// NewService creates a new auth service. revoker may be nil, which disables logout revocation.
func NewService(repo RepositoryAPI, tokenGen TokenGenerator, revoker TokenRevoker, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		revoker:        revoker,
		publisher:      publisher,
		logger:         logger,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: ttl,
		Issuer:         "warehouse-management",
	}
}

// Authenticate validates credentials and returns a token plus the user it belongs to.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if verr := validation.Struct(dto); verr != nil {
		return nil, verr
	}

	storedHash, err := s.repo.GetPasswordHash(ctx, dto.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Warn("login attempt for unknown user", "username", dto.Username)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.NewInternalError("failed to load credentials", err)
	}

	if err := VerifyPassword(storedHash, dto.Password); err != nil {
		s.logger.Warn("login attempt with wrong password", "username", dto.Username)
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.repo.GetUserWithPermissions(ctx, dto.Username)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load user", err)
	}

	token, claims, err := s.tokenGenerator.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("user logged in", "username", user.Username, "role", user.Role, "store_id", user.StoreID)
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(user.Username, events.EntitySession, "login", user.Username, user.StoreID, "login"))

	return &LoginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}

// ValidateAccessToken validates the signature, expiry and revocation state.
func (s *Service) ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.tokenGenerator.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Error("token revocation lookup failed", "error", err, "username", claims.Username)
			return nil, apperrors.NewInternalError("failed to verify token", err)
		}
		if revoked {
			return nil, apperrors.ErrTokenRevoked
		}
	}

	return claims, nil
}

func (s *Service) GetUserWithPermissions(ctx context.Context, username string) (*User, error) {
	u, err := s.repo.GetUserWithPermissions(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.NewInternalError("failed to load user", err)
	}
	return u, nil
}

// Logout revokes the token until its natural expiry.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil {
		return apperrors.ErrInvalidToken
	}
	if s.revoker != nil && claims.ID != "" && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if ttl > 0 {
			if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
				return apperrors.NewInternalError("failed to revoke token", err)
			}
		}
	}
	s.logger.Info("user logged out", "username", claims.Username)
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(claims.Username, events.EntitySession, "logout", claims.Username, claims.StoreID, "logout"))
	return nil
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(u *User) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		Username: u.Username,
		Role:     string(u.Role),
		StoreID:  u.StoreID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.Issuer,
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", nil, err
	}

	return tokenString, claims, nil
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.Username != "" {
		return claims, nil
	}

	return nil, apperrors.ErrInvalidToken
}
