// Package auth issues and validates the signed session tokens. A token
// carries the user's identity, role, and home entity; the entity scope
// itself is never encoded in the token, it is resolved on every request.
package auth

import (
	"errors"
	"time"

	"github.com/fieldops/backend/internal/domain/access"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/fieldops/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrMissingRole      = errors.New("missing role in claims")
)

// Claims represents the custom JWT claims. ActiveEntityID is advisory: it
// records which entity the session last selected, but authorization always
// re-resolves the scope from the role and home entity in storage.
type Claims struct {
	jwt.RegisteredClaims
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	Role           string `json:"role"`
	HomeEntityID   string `json:"home_entity_id,omitempty"`
	ActiveEntityID string `json:"active_entity_id,omitempty"`
}

// Token is a signed session token with its expiry
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenType string    `json:"token_type"` // Bearer
}

// JWTService handles JWT token operations
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.TokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// GenerateTokenInput contains input for token generation
type GenerateTokenInput struct {
	UserID         uuid.UUID
	Username       string
	Role           tenancy.Role
	HomeEntityID   *uuid.UUID
	ActiveEntityID *uuid.UUID
}

// GenerateToken issues a signed session token for the given principal
func (s *JWTService) GenerateToken(input GenerateTokenInput) (*Token, error) {
	now := time.Now()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.UserID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:   input.UserID.String(),
		Username: input.Username,
		Role:     string(input.Role),
	}
	if input.HomeEntityID != nil {
		claims.HomeEntityID = input.HomeEntityID.String()
	}
	if input.ActiveEntityID != nil {
		claims.ActiveEntityID = input.ActiveEntityID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Token{
		Value:     signed,
		ExpiresAt: now.Add(s.expiration),
		TokenType: "Bearer",
	}, nil
}

// ValidateToken validates a session token and returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	if claims.Role == "" {
		return nil, ErrMissingRole
	}

	return claims, nil
}

// Identity converts the claims into an access.Identity for the resolver
func (c *Claims) Identity() (access.Identity, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return access.Identity{}, ErrInvalidClaims
	}

	role, err := tenancy.ParseRole(c.Role)
	if err != nil {
		return access.Identity{}, ErrInvalidClaims
	}

	identity := access.Identity{UserID: userID, Role: role}
	if c.HomeEntityID != "" {
		homeID, err := uuid.Parse(c.HomeEntityID)
		if err != nil {
			return access.Identity{}, ErrInvalidClaims
		}
		identity.HomeEntityID = &homeID
	}

	return identity, nil
}

// GetUserUUID extracts and parses the user ID from claims
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GetActiveEntityUUID parses the advisory active entity ID, if set
func (c *Claims) GetActiveEntityUUID() (*uuid.UUID, error) {
	if c.ActiveEntityID == "" {
		return nil, nil
	}
	id, err := uuid.Parse(c.ActiveEntityID)
	if err != nil {
		return nil, ErrInvalidClaims
	}
	return &id, nil
}

// GetExpiresAtTime returns the token's expiration time as time.Time
func (c *Claims) GetExpiresAtTime() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// GetTokenExpiration returns the configured token lifetime
func (s *JWTService) GetTokenExpiration() time.Duration {
	return s.expiration
}
