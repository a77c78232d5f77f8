package domain

import "time"

// Identity is the verified caller attached to a single request. It is built
// from the session token by the auth middleware and passed down explicitly.
type Identity struct {
	UserID    string
	Name      string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}
