package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk/internal/authz"
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/events"
	"github.com/opsdesk/helpdesk/internal/repository"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// CommentService appends to and reads a ticket's comment log.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	authz      *authz.Authorizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	TicketRepo  repository.TicketRepository
	Authorizer  *authz.Authorizer
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{
		comments:   deps.CommentRepo,
		tickets:    deps.TicketRepo,
		authz:      deps.Authorizer,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ErrEmptyComment is returned for empty or whitespace-only text.
func ErrEmptyComment(ticketID string) error {
	return apperrors.WithRedirect(apperrors.NewValidationCode(apperrors.CodeEmptyComment, "comment cannot be empty"), ticketPath(ticketID))
}

// Add appends exactly one comment and returns it with the author's name.
func (s *CommentService) Add(ctx context.Context, identity domain.Identity, ticketID, text string) (*domain.Comment, error) {
	ticketID = strings.TrimSpace(ticketID)
	if _, err := s.authz.Require(ctx, authz.Request{
		Identity: identity,
		Action:   authz.ActionAddComment,
		Resource: authz.Resource{Type: authz.ResourceTicket, ID: ticketID},
	}); err != nil {
		return nil, apperrors.WithRedirect(err, ticketPath(ticketID))
	}

	body := strings.TrimSpace(text)
	if body == "" {
		return nil, ErrEmptyComment(ticketID)
	}

	ticketID, err := requireID(ticketID, "ticket", "/tickets")
	if err != nil {
		return nil, err
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		mapped := apperrors.ToDomainError(err)
		if mapped.Code == apperrors.CodeNotFound {
			return nil, apperrors.WithRedirect(apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID}), "/tickets")
		}
		return nil, mapped
	}

	comment := &domain.Comment{
		TicketID: ticketID,
		UserID:   identity.UserID,
		Body:     body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticketID,
		Actor:    actorOf(identity),
		Payload: events.CommentAddedPayload{
			CommentID:   comment.ID,
			AuthorID:    comment.UserID,
			BodyPreview: stringPreview(comment.Body, 120),
		},
	})
	return comment, nil
}

// List returns the comments of a ticket, oldest first.
func (s *CommentService) List(ctx context.Context, identity domain.Identity, ticketID string) ([]domain.Comment, error) {
	ticketID, err := requireID(ticketID, "ticket", "/tickets")
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.WithRedirect(apperrors.MapError(err), "/tickets")
	}
	if _, err := s.authz.Require(ctx, authz.Request{
		Identity: identity,
		Action:   authz.ActionViewTicket,
		Resource: authz.Resource{Type: authz.ResourceTicket, ID: ticket.ID, OwnerID: ticket.CreatedBy},
	}); err != nil {
		return nil, apperrors.WithRedirect(err, "/tickets")
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}
