// Package roster resolves who should hear about an assignment: the
// members of the class owning the assignment's subject, restricted to
// users who keep notifications enabled.
package roster

// Role of a user within a class.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Membership ties a user to a class.
type Membership struct {
	ClassID int64 `json:"class_id"`
	UserID  int64 `json:"user_id"`
	Role    Role  `json:"role"`
}

// Recipient is a user eligible to receive reminders. Users with
// notifications disabled never appear as recipients.
type Recipient struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}
