package user

import "time"

type Role string

const (
	RoleSeller         Role = "seller"          // store owner / admin dashboard
	RoleEmployee       Role = "employee"        // general employee dashboard
	RoleOnlineEmployee Role = "online_employee" // order and customer support dashboard
)

type User struct {
	ID           string
	Email        string
	PasswordHash *string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	EmployeeID *string
}

// IsSeller checks if user administers the store
func (u *User) IsSeller() bool {
	return u.Role == RoleSeller
}

// IsValidRole reports whether r is a known role.
func IsValidRole(r Role) bool {
	_, ok := RolePermissions[r]
	return ok
}
