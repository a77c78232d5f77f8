// Package memstore provides in-memory repositories with Postgres-like
// semantics for tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/events"
	"github.com/opsdesk/helpdesk/internal/repository"
)

// Store holds the rows shared by the in-memory repositories.
type Store struct {
	mu       sync.Mutex
	clock    time.Time
	users    map[string]*domain.User
	tickets  map[string]*domain.Ticket
	comments []domain.Comment
	history  []domain.TicketHistory
}

// New returns an empty store.
func New() *Store {
	return &Store{
		clock:   time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		users:   map[string]*domain.User{},
		tickets: map[string]*domain.Ticket{},
	}
}

func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) userName(id string) string {
	if u, ok := s.users[id]; ok {
		return u.Name
	}
	return ""
}

func (s *Store) decorate(t domain.Ticket) domain.Ticket {
	t.CreatedByName = s.userName(t.CreatedBy)
	t.AssignedToName = nil
	if t.AssignedTo != nil {
		id := *t.AssignedTo
		t.AssignedTo = &id
		name := s.userName(id)
		t.AssignedToName = &name
	}
	return t
}

// Users returns the account repository.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Tickets returns the ticket repository.
func (s *Store) Tickets() repository.TicketRepository { return ticketRepo{s} }

// Comments returns the comment repository.
func (s *Store) Comments() repository.CommentRepository { return commentRepo{s} }

// History returns the ticket history repository.
func (s *Store) History() repository.TicketHistoryRepository { return historyRepo{s} }

// CommentCount reports how many comments are stored.
func (s *Store) CommentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.comments)
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.s.tick()
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.User
	for _, u := range r.s.users {
		copied := *u
		copied.PasswordHash = ""
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r userRepo) ListAgents(_ context.Context) ([]domain.Agent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Agent
	for _, u := range r.s.users {
		if u.Role.IsStaff() {
			out = append(out, domain.Agent{ID: u.ID, Name: u.Name, Role: u.Role})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r userRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Role = role
	return nil
}

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket.ID = uuid.NewString()
	ticket.Status = domain.TicketStatusOpen
	ticket.CreatedAt = r.s.tick()
	ticket.UpdatedAt = ticket.CreatedAt
	stored := *ticket
	r.s.tickets[ticket.ID] = &stored
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	decorated := r.s.decorate(*t)
	return &decorated, nil
}

func (r ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Ticket
	for _, t := range r.s.tickets {
		if filter.CreatedBy != nil && t.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.AssignedToOrUnassigned != nil && t.AssignedTo != nil && *t.AssignedTo != *filter.AssignedToOrUnassigned {
			continue
		}
		out = append(out, r.s.decorate(*t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r ticketRepo) UpdateTriage(_ context.Context, update repository.TriageUpdate) (*repository.TriageResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[update.TicketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	result := &repository.TriageResult{OldStatus: t.Status, OldAssignedTo: t.AssignedTo}
	now := r.s.tick()
	record := func(changeType domain.TicketChangeType, key string, oldValue, newValue any) {
		entry := domain.TicketHistory{
			ID:          uuid.NewString(),
			TicketID:    t.ID,
			ChangedByID: update.ChangedBy,
			ChangeType:  changeType,
			OldValue:    map[string]any{key: oldValue},
			NewValue:    map[string]any{key: newValue},
			CreatedAt:   now,
		}
		r.s.history = append(r.s.history, entry)
		result.History = append(result.History, entry)
	}
	if t.Status != update.Status {
		record(domain.ChangeTypeStatus, "status", t.Status, update.Status)
	}
	if !sameID(t.AssignedTo, update.AssignedTo) {
		record(domain.ChangeTypeAssignee, "assigned_to", t.AssignedTo, update.AssignedTo)
	}
	t.Status = update.Status
	t.AssignedTo = update.AssignedTo
	t.UpdatedAt = now
	return result, nil
}

func (r ticketRepo) Count(_ context.Context, createdBy *string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, t := range r.s.tickets {
		if createdBy == nil || t.CreatedBy == *createdBy {
			n++
		}
	}
	return n, nil
}

func (r ticketRepo) CountByStatus(_ context.Context) ([]domain.StatusCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[domain.TicketStatus]int64{}
	for _, t := range r.s.tickets {
		counts[t.Status]++
	}
	var out []domain.StatusCount
	for status, n := range counts {
		out = append(out, domain.StatusCount{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[comment.TicketID]; !ok {
		return &pgconn.PgError{Code: "23503"}
	}
	comment.ID = uuid.NewString()
	comment.CreatedAt = r.s.tick()
	comment.UserName = r.s.userName(comment.UserID)
	r.s.comments = append(r.s.comments, *comment)
	return nil
}

func (r commentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Comment
	for _, c := range r.s.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out, nil
}

type historyRepo struct{ s *Store }

func (r historyRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.TicketHistory
	for _, h := range r.s.history {
		if h.TicketID == ticketID {
			out = append(out, h)
		}
	}
	return out, nil
}

// Dispatcher captures published events.
type Dispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *Dispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *Dispatcher) Subscribe(events.EventType, events.EventHandler) {}

// Types lists the published event types in order.
func (d *Dispatcher) Types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.EventType
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

// Revoker is an in-memory session revocation list.
type Revoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (m *Revoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoked == nil {
		m.revoked = map[string]time.Time{}
	}
	m.revoked[tokenID] = until
	return nil
}

func (m *Revoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}
