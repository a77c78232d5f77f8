package service

import (
	"context"

	"github.com/opsdesk/helpdesk/internal/authz"
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/repository"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// DashboardService computes the landing-page counters.
type DashboardService struct {
	tickets repository.TicketRepository
	authz   *authz.Authorizer
}

// NewDashboardService constructs the service.
func NewDashboardService(tickets repository.TicketRepository, authorizer *authz.Authorizer) *DashboardService {
	return &DashboardService{tickets: tickets, authz: authorizer}
}

// Stats returns global totals with a per-status breakdown for staff, and the
// caller's own ticket count for everyone else.
func (s *DashboardService) Stats(ctx context.Context, identity domain.Identity) (*domain.DashboardStats, error) {
	decision, err := s.authz.Require(ctx, authz.Request{
		Identity: identity,
		Action:   authz.ActionViewDashboard,
		Resource: authz.Resource{Type: authz.ResourceDashboard},
	})
	if err != nil {
		return nil, apperrors.WithRedirect(err, "/login")
	}

	if decision.Scope == authz.ScopeAll {
		total, err := s.tickets.Count(ctx, nil)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		byStatus, err := s.tickets.CountByStatus(ctx)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		return &domain.DashboardStats{Global: true, Total: total, ByStatus: byStatus}, nil
	}

	userID := identity.UserID
	total, err := s.tickets.Count(ctx, &userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &domain.DashboardStats{Total: total}, nil
}
