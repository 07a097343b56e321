package domain

import "time"

// Role enumerates actor roles.
type Role string

const (
	RoleEmployee    Role = "EMPLOYEE"
	RoleDeptManager Role = "DEPT_MANAGER"
	RoleExecutive   Role = "EXECUTIVE"
	RoleAdmin       Role = "ADMIN"
)

// Roles lists every role in a stable order.
var Roles = []Role{RoleEmployee, RoleDeptManager, RoleExecutive, RoleAdmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleDeptManager, RoleExecutive, RoleAdmin:
		return true
	}
	return false
}

// User is an employee account. Every user belongs to exactly one department.
type User struct {
	ID           string
	EmployeeID   string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	DepartmentID string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor is the subset of a user that authorization decisions need.
type Actor struct {
	ID           string
	Role         Role
	DepartmentID string
}

// Actor returns the authorization view of the user.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role, DepartmentID: u.DepartmentID}
}

// UserProfile is a user joined with its department.
type UserProfile struct {
	User       User
	Department Department
}
