package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/events"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

func ticketIDs(tickets []domain.Ticket) []string {
	ids := make([]string, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestCreateTicketDefaults(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", domain.RoleUser)

	ticket, err := env.tickets.Create(context.Background(), alice, TicketCreateInput{Title: "Printer", Description: "jammed"})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, alice.UserID, ticket.CreatedBy)
	assert.Nil(t, ticket.AssignedTo)
	assert.Contains(t, env.dispatcher.Types(), events.EventTicketCreated)
}

func TestCreateTicketValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", domain.RoleUser)

	tests := []struct {
		name  string
		input TicketCreateInput
	}{
		{"missing title", TicketCreateInput{Description: "d"}},
		{"blank description", TicketCreateInput{Title: "t", Description: "   "}},
		{"bad priority", TicketCreateInput{Title: "t", Description: "d", Priority: "URGENT"}},
	}
	for _, tt := range tests {
		_, err := env.tickets.Create(context.Background(), alice, tt.input)
		require.Error(t, err, tt.name)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), tt.name)
	}

	total, err := env.store.Tickets().Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestListScopesByRole(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", domain.RoleUser)
	bob := env.seedUser(t, "bob", domain.RoleUser)
	agent := env.seedUser(t, "agent", domain.RoleAgent)
	other := env.seedUser(t, "other", domain.RoleAgent)
	admin := env.seedUser(t, "admin", domain.RoleAdmin)

	a1 := env.seedTicket(t, alice, "a1")
	b1 := env.seedTicket(t, bob, "b1")
	mine := env.seedTicket(t, alice, "assigned to agent")
	theirs := env.seedTicket(t, bob, "assigned to other")

	_, err := env.tickets.Update(ctx, admin, mine.ID, TicketUpdateInput{Status: "OPEN", AssignedTo: agent.UserID})
	require.NoError(t, err)
	_, err = env.tickets.Update(ctx, admin, theirs.ID, TicketUpdateInput{Status: "OPEN", AssignedTo: other.UserID})
	require.NoError(t, err)

	adminList, err := env.tickets.List(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{theirs.ID, mine.ID, b1.ID, a1.ID}, ticketIDs(adminList))

	agentList, err := env.tickets.List(ctx, agent)
	require.NoError(t, err)
	assert.Equal(t, []string{mine.ID, b1.ID, a1.ID}, ticketIDs(agentList))

	aliceList, err := env.tickets.List(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{mine.ID, a1.ID}, ticketIDs(aliceList))
}

func TestUpdateTriageScenario(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", domain.RoleUser)
	bob := env.seedUser(t, "bob", domain.RoleAgent)
	admin := env.seedUser(t, "admin", domain.RoleAdmin)
	ticket := env.seedTicket(t, alice, "VPN down")

	// the creator cannot triage their own ticket
	_, err := env.tickets.Update(ctx, alice, ticket.ID, TicketUpdateInput{Status: "CLOSED"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	assert.Equal(t, "/tickets/"+ticket.ID, apperrors.ToDomainError(err).Redirect)

	updated, err := env.tickets.Update(ctx, bob, ticket.ID, TicketUpdateInput{Status: "IN_PROGRESS", AssignedTo: bob.UserID})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, bob.UserID, *updated.AssignedTo)

	// empty form values mean OPEN and unassigned
	updated, err = env.tickets.Update(ctx, admin, ticket.ID, TicketUpdateInput{})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, updated.Status)
	assert.Nil(t, updated.AssignedTo)

	// any status may follow any other
	updated, err = env.tickets.Update(ctx, admin, ticket.ID, TicketUpdateInput{Status: "CLOSED"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, updated.Status)
	updated, err = env.tickets.Update(ctx, admin, ticket.ID, TicketUpdateInput{Status: "OPEN"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, updated.Status)

	detail, err := env.tickets.Get(ctx, alice, ticket.ID)
	require.NoError(t, err)
	require.Len(t, detail.History, 6)
	assert.Equal(t, domain.ChangeTypeStatus, detail.History[0].ChangeType)
	assert.Equal(t, domain.ChangeTypeAssignee, detail.History[1].ChangeType)
	assert.Len(t, detail.Agents, 2)
}

func TestUpdateRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", domain.RoleUser)
	admin := env.seedUser(t, "admin", domain.RoleAdmin)
	ticket := env.seedTicket(t, alice, "t")

	_, err := env.tickets.Update(ctx, admin, ticket.ID, TicketUpdateInput{Status: "DONE"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidStatus))

	_, err = env.tickets.Update(ctx, admin, ticket.ID, TicketUpdateInput{AssignedTo: alice.UserID})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = env.tickets.Update(ctx, admin, ticket.ID, TicketUpdateInput{AssignedTo: uuid.NewString()})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = env.tickets.Update(ctx, admin, uuid.NewString(), TicketUpdateInput{Status: "OPEN"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	stored, err := env.store.Tickets().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
}

func TestGetTicket(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", domain.RoleUser)
	bob := env.seedUser(t, "bob", domain.RoleUser)
	ticket := env.seedTicket(t, alice, "t")

	detail, err := env.tickets.Get(ctx, bob, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", detail.Ticket.CreatedByName)

	_, err = env.tickets.Get(ctx, bob, "not-a-uuid")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.Equal(t, "/tickets", apperrors.ToDomainError(err).Redirect)
}
