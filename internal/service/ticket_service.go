package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk/internal/authz"
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/events"
	"github.com/opsdesk/helpdesk/internal/repository"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// TicketService applies the ticket lifecycle: creation, scoped listing,
// viewing and triage updates.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	history    repository.TicketHistoryRepository
	users      repository.UserRepository
	authz      *authz.Authorizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	HistoryRepo repository.TicketHistoryRepository
	UserRepo    repository.UserRepository
	Authorizer  *authz.Authorizer
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    string
}

// TicketUpdateInput carries the raw triage form. An empty Status means OPEN
// and an empty AssignedTo means unassigned.
type TicketUpdateInput struct {
	Status     string
	AssignedTo string
}

// TicketDetail is everything the detail view shows.
type TicketDetail struct {
	Ticket   *domain.Ticket
	Comments []domain.Comment
	Agents   []domain.Agent
	History  []domain.TicketHistory
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		history:    deps.HistoryRepo,
		users:      deps.UserRepo,
		authz:      deps.Authorizer,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create opens a ticket owned by the caller. Status is left to the store default.
func (s *TicketService) Create(ctx context.Context, identity domain.Identity, input TicketCreateInput) (*domain.Ticket, error) {
	if _, err := s.authz.Require(ctx, authz.Request{
		Identity: identity,
		Action:   authz.ActionCreateTicket,
		Resource: authz.Resource{Type: authz.ResourceTicket},
	}); err != nil {
		return nil, apperrors.WithRedirect(err, "/dashboard")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.WithRedirect(apperrors.NewValidationError("title and description are required", nil), "/tickets/new")
	}
	priority, ok := domain.ParseTicketPriority(input.Priority)
	if !ok {
		return nil, apperrors.WithRedirect(apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority}), "/tickets/new")
	}

	ticket := &domain.Ticket{
		Title:         title,
		Description:   description,
		Priority:      priority,
		CreatedBy:     identity.UserID,
		CreatedByName: identity.Name,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actorOf(identity),
		Payload: events.TicketCreatedPayload{
			Priority: ticket.Priority,
			Title:    ticket.Title,
		},
	})
	return ticket, nil
}

// List returns the tickets visible to the caller, newest first.
func (s *TicketService) List(ctx context.Context, identity domain.Identity) ([]domain.Ticket, error) {
	decision, err := s.authz.Require(ctx, authz.Request{
		Identity: identity,
		Action:   authz.ActionListTickets,
		Resource: authz.Resource{Type: authz.ResourceTicketList},
	})
	if err != nil {
		return nil, apperrors.WithRedirect(err, "/dashboard")
	}

	filter, err := ticketFilterFor(decision.Scope, identity)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get loads a ticket with its comments, history and the assignable staff.
func (s *TicketService) Get(ctx context.Context, identity domain.Identity, ticketID string) (*TicketDetail, error) {
	ticketID, err := requireID(ticketID, "ticket", "/tickets")
	if err != nil {
		return nil, err
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Require(ctx, authz.Request{
		Identity: identity,
		Action:   authz.ActionViewTicket,
		Resource: authz.Resource{Type: authz.ResourceTicket, ID: ticket.ID, OwnerID: ticket.CreatedBy},
	}); err != nil {
		return nil, apperrors.WithRedirect(err, "/tickets")
	}

	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	agents, err := s.users.ListAgents(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	detail := &TicketDetail{Ticket: ticket, Comments: comments, Agents: agents}
	if s.history != nil {
		history, err := s.history.ListByTicket(ctx, ticket.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		detail.History = history
	}
	return detail, nil
}

// Update overwrites status and assignee in one write. Any status may follow
// any other; only the caller's role gates the change, and the last writer wins.
func (s *TicketService) Update(ctx context.Context, identity domain.Identity, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticketID = strings.TrimSpace(ticketID)
	detailPath := ticketPath(ticketID)

	if _, err := s.authz.Require(ctx, authz.Request{
		Identity: identity,
		Action:   authz.ActionUpdateTicket,
		Resource: authz.Resource{Type: authz.ResourceTicket, ID: ticketID},
	}); err != nil {
		return nil, apperrors.WithRedirect(err, detailPath)
	}

	ticketID, err := requireID(ticketID, "ticket", "/tickets")
	if err != nil {
		return nil, err
	}

	status, ok := domain.ParseTicketStatus(input.Status)
	if !ok {
		return nil, apperrors.WithRedirect(apperrors.NewValidationCode(apperrors.CodeInvalidStatus, "invalid status"), detailPath)
	}
	assignee, err := s.resolveAssignee(ctx, input.AssignedTo, detailPath)
	if err != nil {
		return nil, err
	}

	result, err := s.tickets.UpdateTriage(ctx, repository.TriageUpdate{
		TicketID:   ticketID,
		Status:     status,
		AssignedTo: assignee,
		ChangedBy:  identity.UserID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.WithRedirect(apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID}), "/tickets")
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket updated",
		zap.String("ticket_id", ticketID),
		zap.String("actor", identity.UserID),
		zap.String("status", string(status)),
		zap.Int("changes", len(result.History)))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticketID,
		Actor:    actorOf(identity),
		Payload: events.TicketUpdatedPayload{
			OldStatus:     result.OldStatus,
			NewStatus:     status,
			OldAssignedTo: result.OldAssignedTo,
			NewAssignedTo: assignee,
		},
	})

	return s.loadTicket(ctx, ticketID)
}

// resolveAssignee maps the raw form value to a staff user id or nil.
func (s *TicketService) resolveAssignee(ctx context.Context, raw, redirect string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	invalid := func(msg string) error {
		return apperrors.WithRedirect(apperrors.NewValidationError(msg, map[string]any{"assigned_to": raw}), redirect)
	}
	if _, err := uuid.Parse(raw); err != nil {
		return nil, invalid("unknown assignee")
	}
	user, err := s.users.GetByID(ctx, raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invalid("unknown assignee")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.Role.IsStaff() {
		return nil, invalid("assignee must be an agent or admin")
	}
	return &user.ID, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.WithRedirect(apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID}), "/tickets")
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func ticketFilterFor(scope authz.Scope, identity domain.Identity) (repository.TicketFilter, error) {
	userID := identity.UserID
	switch scope {
	case authz.ScopeAll:
		return repository.TicketFilter{}, nil
	case authz.ScopeAssignedOrUnassigned:
		return repository.TicketFilter{AssignedToOrUnassigned: &userID}, nil
	case authz.ScopeOwn:
		return repository.TicketFilter{CreatedBy: &userID}, nil
	}
	return repository.TicketFilter{}, apperrors.NewForbidden("no ticket scope for role")
}
