package domain

import "time"

type Role string

const (
	RoleManager Role = "manager"
	RoleChef    Role = "chef"
	RoleWaiter  Role = "waiter"
	RoleCashier Role = "cashier"
	RoleHost    Role = "host"
)

var Roles = []Role{RoleManager, RoleChef, RoleWaiter, RoleCashier, RoleHost}

func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `json:"role"`
	Phone     string    `json:"phone"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Actor is the authenticated user on whose behalf a mutation runs.
type Actor struct {
	UserID uint
	Role   Role
}

func (a Actor) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
