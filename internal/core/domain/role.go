package domain

// Role is the closed set of user roles. Unknown role names are rejected at
// the boundary (ParseRole) instead of deep inside business logic.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDriver     Role = "driver"
	RoleReceiver   Role = "receiver"
	RoleDispatcher Role = "dispatcher"
)

// AllRoles lists every known role, in seed order.
var AllRoles = []Role{RoleAdmin, RoleDriver, RoleReceiver, RoleDispatcher}

// ParseRole validates a role name against the closed vocabulary.
func ParseRole(name string) (Role, error) {
	switch Role(name) {
	case RoleAdmin, RoleDriver, RoleReceiver, RoleDispatcher:
		return Role(name), nil
	}
	return "", ErrRoleNotFound
}

// String returns the role name as stored in the roles table.
func (r Role) String() string {
	return string(r)
}
