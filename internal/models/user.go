package models

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleInstructor UserRole = "instructor"
	RoleStudent    UserRole = "student"
)

// Principal is the acting identity resolved by the auth middleware. The
// content engine only uses the ID (as created_by) and trusts the caller to
// have authorized admin-only operations.
type Principal struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Role UserRole `json:"role"`
}

// CanAuthor reports whether the role may import or export course trees.
func (p Principal) CanAuthor() bool {
	return p.Role == RoleAdmin || p.Role == RoleInstructor
}
