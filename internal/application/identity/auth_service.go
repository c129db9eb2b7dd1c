package identity

import (
	"context"
	"errors"
	"time"

	"github.com/agencyhub/backend/internal/domain/identity"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/auth"
	"github.com/agencyhub/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrAccountDeactivated = shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
)

// AuthService handles sign-in, sign-out and the current-user lookup
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service. blacklist may be
// nil, in which case logout only clears the client-side session.
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
		now:        time.Now,
	}
}

// Login verifies the credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	log := logger.Enrich(ctx, s.logger)

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(req.Password) {
		log.Warn("invalid password", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		log.Warn("login for deactivated account", zap.String("user_id", user.ID.String()))
		return nil, ErrAccountDeactivated
	}

	session, err := s.jwtService.Issue(user)
	if err != nil {
		log.Error("failed to issue session", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to issue session", err)
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Save(ctx, user); err != nil {
		// the session is valid either way
		log.Error("failed to record login", zap.Error(err))
	}

	log.Info("user logged in", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return &LoginResult{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		TokenType: session.TokenType,
		User:      ToUserInfo(user),
	}, nil
}

// Me returns the signed-in user's profile and visible navigation
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrAccountDeactivated
	}
	info := ToUserInfo(user)
	return &info, nil
}

// Logout revokes the session token until it would have expired
func (s *AuthService) Logout(ctx context.Context, in LogoutInput) error {
	log := logger.Enrich(ctx, s.logger)
	if s.blacklist == nil || in.TokenJTI == "" {
		log.Info("user logged out", zap.String("user_id", in.UserID.String()))
		return nil
	}
	if err := s.blacklist.Revoke(ctx, in.TokenJTI, in.TTL); err != nil {
		log.Error("failed to revoke token", zap.Error(err))
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to end session", err)
	}
	log.Info("user logged out", zap.String("user_id", in.UserID.String()), zap.Bool("revoked", true))
	return nil
}
