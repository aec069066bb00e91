package types

// Actions gated by the permission evaluator.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// Role sentinels usable in a permission role-set alongside principal IDs.
const (
	RoleAll           = "all"
	RoleAuthenticated = "authenticated"
)

// Permissions maps an action to the set of principal IDs and role sentinels
// allowed to perform it.
type Permissions map[string][]string

// Principal identifies the caller of a store operation. Authenticated is
// false for anonymous callers; write operations fail closed for them.
type Principal struct {
	ID            string
	Authenticated bool
}

// Anonymous is the principal used when no profile is available.
var Anonymous = Principal{}

// CanPerform reports whether the principal may perform the action under the
// given permissions. The test is a union, not an override: a principal
// lacking an explicit entry but covered by "all" (or by "authenticated"
// while logged in) still passes.
func CanPerform(action string, p Principal, perms Permissions) bool {
	for _, entry := range perms[action] {
		switch entry {
		case RoleAll:
			return true
		case RoleAuthenticated:
			if p.Authenticated {
				return true
			}
		default:
			if p.Authenticated && entry == p.ID {
				return true
			}
		}
	}
	return false
}

// DefaultPermissions returns the permission template applied to a new
// document: anyone may read, any authenticated principal may write, and
// only the owner may delete.
func DefaultPermissions(ownerID string) Permissions {
	return Permissions{
		ActionRead:   {RoleAll},
		ActionWrite:  {RoleAuthenticated},
		ActionDelete: {ownerID},
	}
}

// Clone returns a deep copy of the permissions map.
func (p Permissions) Clone() Permissions {
	if p == nil {
		return nil
	}
	out := make(Permissions, len(p))
	for action, entries := range p {
		cp := make([]string, len(entries))
		copy(cp, entries)
		out[action] = cp
	}
	return out
}
