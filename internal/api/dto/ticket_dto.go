package dto

import (
	"time"

	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/service"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Priority    string `json:"priority" form:"priority"`
}

// UpdateTicketRequest payload. Empty values mean OPEN and unassigned.
type UpdateTicketRequest struct {
	Status     string `json:"status" form:"status"`
	AssignedTo string `json:"assigned_to" form:"assigned_to"`
}

// TicketSummary response.
type TicketSummary struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Priority       domain.TicketPriority `json:"priority"`
	Status         domain.TicketStatus   `json:"status"`
	CreatedBy      string                `json:"created_by"`
	CreatedByName  string                `json:"created_by_name"`
	AssignedTo     *string               `json:"assigned_to"`
	AssignedToName *string               `json:"assigned_to_name"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string            `json:"description"`
	Comments    []CommentResponse `json:"comments"`
	Agents      []AgentResponse   `json:"agents"`
	History     []HistoryResponse `json:"history"`
}

// AgentResponse is an assignable staff member.
type AgentResponse struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

// HistoryResponse is one audit entry.
type HistoryResponse struct {
	ChangedBy  string            `json:"changed_by"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	OldValue   map[string]any    `json:"old_value"`
	NewValue   map[string]any    `json:"new_value"`
	CreatedAt  time.Time         `json:"created_at"`
}

// DashboardResponse carries the landing-page counters.
type DashboardResponse struct {
	Global   bool             `json:"global"`
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status,omitempty"`
}

// NewTicketSummary renders a ticket row.
func NewTicketSummary(t *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:             t.ID,
		Title:          t.Title,
		Priority:       t.Priority,
		Status:         t.Status,
		CreatedBy:      t.CreatedBy,
		CreatedByName:  t.CreatedByName,
		AssignedTo:     t.AssignedTo,
		AssignedToName: t.AssignedToName,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// NewTicketDetail renders the detail view.
func NewTicketDetail(d *service.TicketDetail) TicketDetailResponse {
	resp := TicketDetailResponse{
		TicketSummary: NewTicketSummary(d.Ticket),
		Description:   d.Ticket.Description,
		Comments:      make([]CommentResponse, 0, len(d.Comments)),
		Agents:        make([]AgentResponse, 0, len(d.Agents)),
		History:       make([]HistoryResponse, 0, len(d.History)),
	}
	for i := range d.Comments {
		resp.Comments = append(resp.Comments, NewCommentResponse(&d.Comments[i]))
	}
	for _, a := range d.Agents {
		resp.Agents = append(resp.Agents, AgentResponse{ID: a.ID, Name: a.Name, Role: a.Role})
	}
	for _, h := range d.History {
		resp.History = append(resp.History, HistoryResponse{
			ChangedBy:  h.ChangedByID,
			ChangeType: h.ChangeType,
			OldValue:   h.OldValue,
			NewValue:   h.NewValue,
			CreatedAt:  h.CreatedAt,
		})
	}
	return resp
}

// NewDashboardResponse renders dashboard stats.
func NewDashboardResponse(stats *domain.DashboardStats) DashboardResponse {
	resp := DashboardResponse{Global: stats.Global, Total: stats.Total}
	if stats.Global {
		resp.ByStatus = make(map[string]int64, len(stats.ByStatus))
		for _, sc := range stats.ByStatus {
			resp.ByStatus[string(sc.Status)] = sc.Count
		}
	}
	return resp
}
