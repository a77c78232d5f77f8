package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk/internal/api/dto"
	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/service"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// CommentsHandler appends to a ticket's comment log.
type CommentsHandler struct {
	comments *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: commentService}
}

// ListComments GET /tickets/:id/comments.
func (h *CommentsHandler) ListComments(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	comments, err := h.comments.List(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, dto.NewCommentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddComment POST /tickets/:id/comments.
func (h *CommentsHandler) AddComment(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	ticketID := c.Params("id")
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return service.ErrEmptyComment(ticketID)
	}

	comment, err := h.comments.Add(c.UserContext(), identity, ticketID, req.Comment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":     dto.NewCommentResponse(comment),
		"redirect": "/tickets/" + comment.TicketID,
	})
}

// AddCommentAjax POST /tickets/:id/comments_ajax. It answers with the bare
// comment record, or {"error":"empty"} for blank text.
func (h *CommentsHandler) AddCommentAjax(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty"})
	}

	comment, err := h.comments.Add(c.UserContext(), identity, c.Params("id"), req.Comment)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeEmptyComment) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty"})
		}
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewCommentResponse(comment))
}
