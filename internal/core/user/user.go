package user

import "strings"

// Role is the coarse permission level carried in session tokens.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

var Roles = []Role{RoleStudent, RoleAdmin}

func (r Role) IsValid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// ParseRole accepts an empty string as the default student role.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleStudent, true
	}
	r := Role(s)
	return r, r.IsValid()
}
