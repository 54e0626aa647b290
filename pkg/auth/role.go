package auth

import "strings"

// Role is the dashboard role carried in the access token. Role CRUD lives
// elsewhere; this package only ranks them.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
	RoleMaster   Role = "master"
)

var roleRank = map[Role]int{
	RoleViewer:   1,
	RoleOperator: 2,
	RoleManager:  3,
	RoleAdmin:    4,
	RoleMaster:   5,
}

// ParseRole normalizes a role name. Unknown names rank below every known role.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

func (r Role) Rank() int {
	return roleRank[r]
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r ranks at or above min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}

// CanTriage is false for the read-only tiers (viewer, operator).
func (r Role) CanTriage() bool {
	return r.AtLeast(RoleManager)
}

// CanManageKnowledge gates edits of the shared knowledge contexts.
func (r Role) CanManageKnowledge() bool {
	return r.AtLeast(RoleAdmin)
}
