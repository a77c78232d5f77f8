package dto

import (
	"time"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Comment string `json:"comment" form:"comment"`
}

// CommentResponse is the stored comment with its author's name.
type CommentResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommentResponse renders a comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TicketID:  c.TicketID,
		UserID:    c.UserID,
		UserName:  c.UserName,
		Comment:   c.Body,
		CreatedAt: c.CreatedAt,
	}
}
