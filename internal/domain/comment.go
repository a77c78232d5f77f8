package domain

import "time"

// Comment is an append-only annotation on a ticket.
type Comment struct {
	ID        string
	TicketID  string
	UserID    string
	UserName  string
	Body      string
	CreatedAt time.Time
}
