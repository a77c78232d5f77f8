package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// ParseTicketStatus maps empty input to OPEN.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return TicketStatusOpen, true
	}
	status := TicketStatus(raw)
	switch status {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return status, true
	}
	return status, false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// ParseTicketPriority maps empty input to MEDIUM.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return TicketPriorityMedium, true
	}
	priority := TicketPriority(raw)
	switch priority {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return priority, true
	}
	return priority, false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID             string
	Title          string
	Description    string
	Priority       TicketPriority
	Status         TicketStatus
	CreatedBy      string
	CreatedByName  string
	AssignedTo     *string
	AssignedToName *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Agent is the projection of a user that tickets can be assigned to.
type Agent struct {
	ID   string
	Name string
	Role Role
}
