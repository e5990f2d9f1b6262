package auth

import (
	"encoding/json"
	"fmt"
)

// Role is the authorization level attached to an administrator account and
// carried into that administrator's session. Roles are ordered: a route
// gated on RoleAdmin is also open to RoleSuperadmin.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
	RoleSuperadmin
)

// ParseRole parses the string form used in admin.json and login forms.
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	case "superadmin":
		return RoleSuperadmin, nil
	default:
		return RoleUser, fmt.Errorf("unknown role: %q", s)
	}
}

// String returns the serialized role name.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleSuperadmin:
		return "superadmin"
	default:
		return "user"
	}
}

// AtLeast reports whether r satisfies a check gated on min.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// MarshalJSON serializes the role as its string name.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON parses the string form, rejecting unknown roles.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
