package entity

// Role is the authorization role carried by every user and checked at the
// authorization boundary.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// Allows reports whether a caller holding r may act with the required role.
func (r Role) Allows(required Role) bool {
	if required == RoleMember {
		return r.Valid()
	}
	return r == required
}
