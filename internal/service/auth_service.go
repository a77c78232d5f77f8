package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/config"
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/repository"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// AuthService coordinates registration, login and logout.
type AuthService struct {
	users      repository.UserRepository
	revoker    auth.SessionRevoker
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Revoker  auth.SessionRevoker
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		revoker:    deps.Revoker,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// Register creates a USER account. The password is stored only as a bcrypt hash.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperrors.WithRedirect(apperrors.NewValidationError("name, email and password are required", nil), "/register")
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, apperrors.WithRedirect(apperrors.NewValidationError("password is too long", map[string]any{"max_bytes": auth.MaxPasswordBytes}), "/register")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewAlreadyRegistered()
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewAlreadyRegistered()
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login verifies the credential pair and issues a session token. Unknown
// email and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, domain.Identity, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", domain.Identity{}, apperrors.NewInvalidCredentials()
		}
		return nil, "", domain.Identity{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", zap.String("user_id", user.ID))
		return nil, "", domain.Identity{}, apperrors.NewInvalidCredentials()
	}

	token, identity, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", domain.Identity{}, apperrors.NewInternalError(err)
	}
	return user, token, identity, nil
}

// Logout revokes the session token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, identity domain.Identity) error {
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, identity.TokenID, identity.ExpiresAt); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
