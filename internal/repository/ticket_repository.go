package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// TicketFilter narrows a listing. Nil fields do not constrain.
type TicketFilter struct {
	// CreatedBy keeps tickets owned by the given user.
	CreatedBy *string
	// AssignedToOrUnassigned keeps tickets assigned to the given user or to nobody.
	AssignedToOrUnassigned *string
}

// TriageUpdate overwrites status and assignee of one ticket.
type TriageUpdate struct {
	TicketID   string
	Status     domain.TicketStatus
	AssignedTo *string
	ChangedBy  string
}

// TriageResult describes what an applied TriageUpdate replaced.
type TriageResult struct {
	OldStatus     domain.TicketStatus
	OldAssignedTo *string
	History       []domain.TicketHistory
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	UpdateTriage(ctx context.Context, update TriageUpdate) (*TriageResult, error)
	Count(ctx context.Context, createdBy *string) (int64, error)
	CountByStatus(ctx context.Context) ([]domain.StatusCount, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketSelect = `
        SELECT t.id, t.title, t.description, t.priority, t.status, t.created_by, u.name,
               t.assigned_to, a.name, t.created_at, t.updated_at
        FROM tickets t
        JOIN users u ON t.created_by = u.id
        LEFT JOIN users a ON t.assigned_to = a.id`

// Create inserts a ticket and leaves status to the column default.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, priority, created_by)
        VALUES ($1,$2,$3,$4)
        RETURNING id, status, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.CreatedBy,
	).Scan(&ticket.ID, &ticket.Status, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.pool.QueryRow(ctx, ticketSelect+` WHERE t.id=$1`, id))
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("t.created_by=$%d", len(args)))
	}
	if filter.AssignedToOrUnassigned != nil {
		args = append(args, *filter.AssignedToOrUnassigned)
		clauses = append(clauses, fmt.Sprintf("(t.assigned_to=$%d OR t.assigned_to IS NULL)", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_at DESC`, ticketSelect, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

// UpdateTriage overwrites status and assignee in one transaction and writes
// one history row per field that actually changed. The row lock only orders
// concurrent writers; the last one still wins.
func (r *ticketRepository) UpdateTriage(ctx context.Context, update TriageUpdate) (*TriageResult, error) {
	var result TriageResult
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`SELECT status, assigned_to FROM tickets WHERE id=$1 FOR UPDATE`, update.TicketID,
		).Scan(&result.OldStatus, &result.OldAssignedTo); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE tickets SET status=$1, assigned_to=$2, updated_at=NOW() WHERE id=$3`,
			update.Status, update.AssignedTo, update.TicketID,
		); err != nil {
			return err
		}

		for _, entry := range triageHistory(update, result.OldStatus, result.OldAssignedTo) {
			if err := insertHistory(ctx, tx, &entry); err != nil {
				return err
			}
			result.History = append(result.History, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ticketRepository) Count(ctx context.Context, createdBy *string) (int64, error) {
	var total int64
	var err error
	if createdBy != nil {
		err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE created_by=$1`, *createdBy).Scan(&total)
	} else {
		err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&total)
	}
	return total, err
}

func (r *ticketRepository) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusCount
	for rows.Next() {
		var sc domain.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

// triageHistory builds the audit entries for the fields an update changes.
func triageHistory(update TriageUpdate, oldStatus domain.TicketStatus, oldAssignee *string) []domain.TicketHistory {
	var entries []domain.TicketHistory
	if oldStatus != update.Status {
		entries = append(entries, domain.TicketHistory{
			TicketID:    update.TicketID,
			ChangedByID: update.ChangedBy,
			ChangeType:  domain.ChangeTypeStatus,
			OldValue:    map[string]any{"status": oldStatus},
			NewValue:    map[string]any{"status": update.Status},
		})
	}
	if !sameAssignee(oldAssignee, update.AssignedTo) {
		entries = append(entries, domain.TicketHistory{
			TicketID:    update.TicketID,
			ChangedByID: update.ChangedBy,
			ChangeType:  domain.ChangeTypeAssignee,
			OldValue:    map[string]any{"assigned_to": oldAssignee},
			NewValue:    map[string]any{"assigned_to": update.AssignedTo},
		})
	}
	return entries
}

func sameAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var ticket domain.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CreatedBy,
		&ticket.CreatedByName,
		&ticket.AssignedTo,
		&ticket.AssignedToName,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	return ticket, err
}
