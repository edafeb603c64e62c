package application

import (
	"context"
	"time"

	"github.com/peterkyalo/stock-inventory-sub002/internal/domain"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/auth"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/errors"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/logging"
)

// AuthService authenticates operators and mints access tokens
type AuthService struct {
	operators domain.OperatorRepository
	jwtConfig auth.JWTConfig
	logger    *logging.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(operators domain.OperatorRepository, jwtConfig auth.JWTConfig, logger *logging.Logger) *AuthService {
	return &AuthService{
		operators: operators,
		jwtConfig: jwtConfig,
		logger:    logger,
	}
}

// Login verifies credentials and returns a signed access token. Unknown
// usernames and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, cmd LoginCommand) (*LoginResultDTO, error) {
	operator, err := s.operators.FindByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}
	if operator == nil {
		return nil, errors.ErrUnauthorized("invalid credentials")
	}
	if !operator.IsActive {
		return nil, errors.ErrForbidden("operator account is disabled")
	}

	if err := operator.VerifyPassword(cmd.Password); err != nil {
		s.logger.WithContext(ctx).Warn("Failed login attempt", "username", cmd.Username)
		return nil, errors.ErrUnauthorized("invalid credentials")
	}

	capabilities := make([]auth.Capability, len(operator.Capabilities))
	for i, c := range operator.Capabilities {
		capabilities[i] = auth.Capability(c)
	}

	now := time.Now().UTC()
	token, err := auth.MintAccessToken(s.jwtConfig, now, auth.AccessTokenPayload{
		OperatorID:   operator.ID,
		Username:     operator.Username,
		Role:         auth.Role(operator.Role),
		Capabilities: capabilities,
	})
	if err != nil {
		return nil, errors.ErrInternal("failed to mint access token")
	}

	lastLogin := now
	operator.LastLoginAt = &lastLogin
	operator.UpdatedAt = now
	if err := s.operators.Save(ctx, operator); err != nil {
		return nil, errors.ErrTransientStorage(err)
	}

	s.logger.WithContext(ctx).Info("Operator logged in", "operatorId", operator.ID, "username", operator.Username)

	return &LoginResultDTO{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   now.Add(time.Duration(s.jwtConfig.ExpirationMinutes) * time.Minute),
		OperatorID:  operator.ID,
		Username:    operator.Username,
		Role:        operator.Role,
	}, nil
}

// EnsureAdminOperator seeds the initial admin account when the operator
// collection is empty. Startup only.
func (s *AuthService) EnsureAdminOperator(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	count, err := s.operators.Count(ctx)
	if err != nil {
		return errors.ErrTransientStorage(err)
	}
	if count > 0 {
		return nil
	}

	operator, err := domain.NewOperator(username, password, "Administrator", string(auth.RoleAdmin), nil)
	if err != nil {
		return errors.ErrInternal("failed to create admin operator")
	}
	if err := s.operators.Save(ctx, operator); err != nil {
		return errors.ErrTransientStorage(err)
	}

	s.logger.Info("Seeded initial admin operator", "username", username)
	return nil
}
