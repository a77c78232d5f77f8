package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk/internal/authz"
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/events"
	"github.com/opsdesk/helpdesk/internal/repository"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// UserService covers account administration.
type UserService struct {
	users      repository.UserRepository
	authz      *authz.Authorizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Authorizer *authz.Authorizer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		authz:      deps.Authorizer,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// List returns every account, newest first. ADMIN only.
func (s *UserService) List(ctx context.Context, identity domain.Identity) ([]domain.User, error) {
	if _, err := s.authz.Require(ctx, authz.Request{
		Identity: identity,
		Action:   authz.ActionManageUsers,
		Resource: authz.Resource{Type: authz.ResourceDirectory},
	}); err != nil {
		return nil, apperrors.WithRedirect(err, "/dashboard")
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ChangeRole overwrites the role of userID. ADMIN only.
func (s *UserService) ChangeRole(ctx context.Context, identity domain.Identity, userID, rawRole string) (*domain.User, error) {
	if _, err := s.authz.Require(ctx, authz.Request{
		Identity: identity,
		Action:   authz.ActionChangeRole,
		Resource: authz.Resource{Type: authz.ResourceAccount, ID: userID},
	}); err != nil {
		return nil, apperrors.WithRedirect(err, "/dashboard")
	}

	role, ok := domain.ParseRole(rawRole)
	if !ok {
		return nil, apperrors.WithRedirect(apperrors.NewValidationCode(apperrors.CodeInvalidRole, "invalid role"), "/users")
	}
	userID, err := requireID(userID, "user", "/users")
	if err != nil {
		return nil, err
	}

	user, err := s.setRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventRoleChanged,
		Actor:   actorOf(identity),
		Payload: events.RoleChangedPayload{UserID: user.ID, NewRole: role},
	})
	return user, nil
}

// SetRoleByEmail is the out-of-band path used to bootstrap the first ADMIN.
func (s *UserService) SetRoleByEmail(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationCode(apperrors.CodeInvalidRole, "invalid role")
	}
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}
	return s.setRole(ctx, user.ID, role)
}

func (s *UserService) setRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	notFound := func() error {
		return apperrors.WithRedirect(apperrors.NewNotFound("user", map[string]any{"user_id": userID}), "/users")
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound()
		}
		return nil, apperrors.MapError(err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound()
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("role changed", zap.String("user_id", userID), zap.String("role", string(role)))
	return user, nil
}
