package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// CommentRepository manages the append-only comment log of a ticket.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

// Create appends the comment and fills in id, timestamp and author name.
func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        WITH inserted AS (
            INSERT INTO ticket_comments (ticket_id, user_id, comment)
            VALUES ($1,$2,$3)
            RETURNING id, user_id, created_at
        )
        SELECT i.id, i.created_at, u.name
        FROM inserted i JOIN users u ON u.id = i.user_id`
	return r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.UserID,
		comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UserName)
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	const query = `
        SELECT c.id, c.ticket_id, c.user_id, u.name, c.comment, c.created_at
        FROM ticket_comments c
        JOIN users u ON c.user_id = u.id
        WHERE c.ticket_id=$1
        ORDER BY c.created_at ASC, c.id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.UserID,
			&comment.UserName,
			&comment.Body,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
