package identity

import (
	"context"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/fieldops/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService handles authentication operations
type AuthService struct {
	users      tenancy.UserRepository
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(users tenancy.UserRepository, jwtService *auth.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login authenticates a user and returns a session token. The optional
// active entity is carried in the token as an advisory hint only; scope is
// re-resolved against storage on every request.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Warn("Login attempt for unknown user", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.IsActive() {
		s.logger.Warn("Login attempt for inactive user", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.CheckPassword(input.Password) {
		s.logger.Warn("Failed password check", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	var activeEntity *uuid.UUID
	if input.ActiveEntityID != nil && *input.ActiveEntityID != uuid.Nil {
		activeEntity = input.ActiveEntityID
	} else {
		activeEntity = user.HomeEntityID
	}

	token, err := s.jwtService.GenerateToken(auth.GenerateTokenInput{
		UserID:         user.ID,
		Username:       user.Username,
		Role:           user.Role,
		HomeEntityID:   user.HomeEntityID,
		ActiveEntityID: activeEntity,
	})
	if err != nil {
		return nil, err
	}

	user.RecordLogin()
	if err := s.users.Update(ctx, user); err != nil {
		// Login still succeeds; the timestamp is informational.
		s.logger.Warn("Failed to record login time", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)

	return &LoginResult{
		Token: *token,
		User:  toUserResponse(user),
	}, nil
}

// Validate parses a token and returns the claims if the token is good.
func (s *AuthService) Validate(tokenValue string) (*auth.Claims, error) {
	return s.jwtService.ValidateToken(tokenValue)
}
