package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/helpdesk/internal/domain"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

func newTestAuthorizer(t *testing.T, restrict bool) *Authorizer {
	t.Helper()
	a, err := NewAuthorizer(Config{RestrictTicketView: restrict})
	require.NoError(t, err)
	return a
}

func identity(id string, role domain.Role) domain.Identity {
	return domain.Identity{UserID: id, Name: id, Role: role, TokenID: "tok-" + id}
}

func TestAuthorizeRoleMatrix(t *testing.T) {
	t.Parallel()
	a := newTestAuthorizer(t, false)

	allowed := map[Action]map[domain.Role]bool{
		ActionViewDashboard: {domain.RoleAdmin: true, domain.RoleAgent: true, domain.RoleUser: true},
		ActionListTickets:   {domain.RoleAdmin: true, domain.RoleAgent: true, domain.RoleUser: true},
		ActionCreateTicket:  {domain.RoleAdmin: true, domain.RoleAgent: true, domain.RoleUser: true},
		ActionViewTicket:    {domain.RoleAdmin: true, domain.RoleAgent: true, domain.RoleUser: true},
		ActionAddComment:    {domain.RoleAdmin: true, domain.RoleAgent: true, domain.RoleUser: true},
		ActionUpdateTicket:  {domain.RoleAdmin: true, domain.RoleAgent: true, domain.RoleUser: false},
		ActionManageUsers:   {domain.RoleAdmin: true, domain.RoleAgent: false, domain.RoleUser: false},
		ActionChangeRole:    {domain.RoleAdmin: true, domain.RoleAgent: false, domain.RoleUser: false},
	}

	for action, byRole := range allowed {
		for role, want := range byRole {
			req := Request{
				Identity: identity("caller", role),
				Action:   action,
				Resource: Resource{Type: ResourceTicket, ID: "t1", OwnerID: "someone-else"},
			}
			got := a.Authorize(context.Background(), req)
			assert.Equal(t, want, got.Allowed, "%s as %s: %s", action, role, got.Reason)
		}
	}
}

func TestAuthorizeUpdateDeniedForCreator(t *testing.T) {
	t.Parallel()
	a := newTestAuthorizer(t, false)

	decision, err := a.Require(context.Background(), Request{
		Identity: identity("alice", domain.RoleUser),
		Action:   ActionUpdateTicket,
		Resource: Resource{Type: ResourceTicket, ID: "t1", OwnerID: "alice"},
	})

	assert.False(t, decision.Allowed)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestAuthorizeScopes(t *testing.T) {
	t.Parallel()
	a := newTestAuthorizer(t, false)

	tests := []struct {
		action Action
		role   domain.Role
		want   Scope
	}{
		{ActionListTickets, domain.RoleAdmin, ScopeAll},
		{ActionListTickets, domain.RoleAgent, ScopeAssignedOrUnassigned},
		{ActionListTickets, domain.RoleUser, ScopeOwn},
		{ActionViewDashboard, domain.RoleAdmin, ScopeAll},
		{ActionViewDashboard, domain.RoleAgent, ScopeAll},
		{ActionViewDashboard, domain.RoleUser, ScopeOwn},
		{ActionCreateTicket, domain.RoleUser, ScopeNone},
	}

	for _, tt := range tests {
		got := a.Authorize(context.Background(), Request{
			Identity: identity("caller", tt.role),
			Action:   tt.action,
			Resource: Resource{Type: ResourceTicketList},
		})
		require.True(t, got.Allowed)
		assert.Equal(t, tt.want, got.Scope, "%s as %s", tt.action, tt.role)
	}
}

func TestAuthorizeAdminCanChangeOwnRole(t *testing.T) {
	t.Parallel()
	a := newTestAuthorizer(t, false)

	got := a.Authorize(context.Background(), Request{
		Identity: identity("root", domain.RoleAdmin),
		Action:   ActionChangeRole,
		Resource: Resource{Type: ResourceAccount, ID: "root"},
	})
	assert.True(t, got.Allowed, got.Reason)
}

func TestAuthorizeFailsClosed(t *testing.T) {
	t.Parallel()
	a := newTestAuthorizer(t, false)

	unknown := a.Authorize(context.Background(), Request{
		Identity: identity("root", domain.RoleAdmin),
		Action:   Action("delete_ticket"),
	})
	assert.False(t, unknown.Allowed)

	badRole := a.Authorize(context.Background(), Request{
		Identity: identity("ghost", domain.Role("ROOT")),
		Action:   ActionViewTicket,
	})
	assert.False(t, badRole.Allowed)

	anonymous := a.Authorize(context.Background(), Request{
		Identity: domain.Identity{Role: domain.RoleAdmin},
		Action:   ActionViewTicket,
	})
	assert.False(t, anonymous.Allowed)
}

func TestAuthorizeViewTicketIsOpenByDefault(t *testing.T) {
	t.Parallel()
	a := newTestAuthorizer(t, false)

	got := a.Authorize(context.Background(), Request{
		Identity: identity("bob", domain.RoleUser),
		Action:   ActionViewTicket,
		Resource: Resource{Type: ResourceTicket, ID: "t1", OwnerID: "alice"},
	})
	assert.True(t, got.Allowed)
}

func TestAuthorizeRestrictedTicketView(t *testing.T) {
	t.Parallel()
	a := newTestAuthorizer(t, true)

	view := func(id string, role domain.Role, owner string) bool {
		return a.Authorize(context.Background(), Request{
			Identity: identity(id, role),
			Action:   ActionViewTicket,
			Resource: Resource{Type: ResourceTicket, ID: "t1", OwnerID: owner},
		}).Allowed
	}

	assert.True(t, view("alice", domain.RoleUser, "alice"))
	assert.False(t, view("bob", domain.RoleUser, "alice"))
	assert.True(t, view("agent", domain.RoleAgent, "alice"))
	assert.True(t, view("admin", domain.RoleAdmin, "alice"))
}

func TestNewAuthorizerRejectsBrokenPolicy(t *testing.T) {
	t.Parallel()
	_, err := NewAuthorizer(Config{PolicyBytes: []byte("permit (principal, action, resource")})
	assert.Error(t, err)
}
