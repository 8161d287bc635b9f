package domain

// Role defines what a user may do.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// User is an authenticated API caller. Batches, expenses, and invoices are
// all scoped to a user.
type User struct {
	ID    string
	Email string
	Role  Role
}
