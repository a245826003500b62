package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a registered customer or back-office account. Authentication
// itself is handled by the external identity provider; this record only
// carries what the back-office manages.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Role        Role
	Active      bool
	CreatedAt   time.Time
}
