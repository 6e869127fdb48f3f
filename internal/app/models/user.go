package models

import (
	"fmt"
)

// Role is the authorization level of a signed-in user. The zero value is not a
// valid role.
type Role uint8

const (
	RoleStaff Role = iota + 1
	RoleAdmin
)

// ParseRole maps the API's role string onto a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "staff":
		return RoleStaff, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return 0, fmt.Errorf("unknown role %q: %w", s, ErrInvalidRole)
	}
}

func (r Role) String() string {
	switch r {
	case RoleStaff:
		return "staff"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("marshal %s: %w", r, ErrInvalidRole)
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User is the profile snapshot returned by the auth endpoints alongside the token.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Session pairs a bearer token with the profile it was issued for. A Session is
// only valid when both halves are present.
type Session struct {
	Token string
	User  User
}

func (s Session) Valid() bool {
	return s.Token != "" && s.User.Role.Valid()
}
