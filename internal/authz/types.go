package authz

import (
	"time"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// Action names an operation subject to authorization.
type Action string

const (
	ActionViewDashboard Action = "view_dashboard"
	ActionListTickets   Action = "list_tickets"
	ActionCreateTicket  Action = "create_ticket"
	ActionViewTicket    Action = "view_ticket"
	ActionUpdateTicket  Action = "update_ticket"
	ActionAddComment    Action = "add_comment"
	ActionManageUsers   Action = "manage_users"
	ActionChangeRole    Action = "change_role"
)

var knownActions = map[Action]struct{}{
	ActionViewDashboard: {},
	ActionListTickets:   {},
	ActionCreateTicket:  {},
	ActionViewTicket:    {},
	ActionUpdateTicket:  {},
	ActionAddComment:    {},
	ActionManageUsers:   {},
	ActionChangeRole:    {},
}

// Known reports whether a is registered. Unknown actions are always denied.
func (a Action) Known() bool {
	_, ok := knownActions[a]
	return ok
}

// Scope tells a listing which tickets the caller may see.
type Scope string

const (
	ScopeNone                 Scope = ""
	ScopeAll                  Scope = "ALL"
	ScopeAssignedOrUnassigned Scope = "ASSIGNED_OR_UNASSIGNED"
	ScopeOwn                  Scope = "OWN"
)

// Resource types used in policies.
const (
	ResourceTicket     = "Ticket"
	ResourceDashboard  = "Dashboard"
	ResourceTicketList = "TicketList"
	ResourceAccount    = "Account"
	ResourceDirectory  = "UserDirectory"
)

// Resource is the target of a request. OwnerID is empty when the resource
// has no owner or the owner is not known yet.
type Resource struct {
	Type    string
	ID      string
	OwnerID string
}

// Request contains everything needed for a decision.
type Request struct {
	Identity domain.Identity
	Action   Action
	Resource Resource
}

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed  bool
	Reason   string
	PolicyID string
	Scope    Scope
	Duration time.Duration
}
