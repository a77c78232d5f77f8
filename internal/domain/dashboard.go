package domain

// StatusCount is one row of the per-status breakdown.
type StatusCount struct {
	Status TicketStatus
	Count  int64
}

// DashboardStats holds the role-scoped aggregate shown after login.
// Global is false when only the caller's own tickets were counted.
type DashboardStats struct {
	Global   bool
	Total    int64
	ByStatus []StatusCount
}
