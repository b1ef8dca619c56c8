// Package access resolves who may talk to the bot and what they may do.
package access

// Role distinguishes owners from employees.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleEmployee Role = "employee"
)

// Capabilities is the owner/employee split resolved once per session.
// Employees only enter transactions; owners get the full menu.
type Capabilities struct {
	CanViewAnalysis bool
	CanEditBalance  bool
	CanEditDebts    bool
}

// Policy is the allow-list plus owner designation loaded from config.
type Policy struct {
	allowed map[int64]struct{}
	owners  map[int64]struct{}
}

// NewPolicy builds a policy from the configured id lists.
// Owner ids are expected to be a subset of the allow-list; config
// validation enforces that before the policy is built.
func NewPolicy(allowedIDs, ownerIDs []int64) *Policy {
	p := &Policy{
		allowed: make(map[int64]struct{}, len(allowedIDs)),
		owners:  make(map[int64]struct{}, len(ownerIDs)),
	}
	for _, id := range allowedIDs {
		p.allowed[id] = struct{}{}
	}
	for _, id := range ownerIDs {
		p.owners[id] = struct{}{}
	}
	return p
}

// Allowed reports whether the user may interact with the bot at all.
func (p *Policy) Allowed(userID int64) bool {
	_, ok := p.allowed[userID]
	return ok
}

// RoleOf resolves the user's role. Callers must check Allowed first;
// an unknown user resolves to employee.
func (p *Policy) RoleOf(userID int64) Role {
	if _, ok := p.owners[userID]; ok {
		return RoleOwner
	}
	return RoleEmployee
}

// CapabilitiesOf derives the capability set from a role.
func CapabilitiesOf(role Role) Capabilities {
	if role == RoleOwner {
		return Capabilities{
			CanViewAnalysis: true,
			CanEditBalance:  true,
			CanEditDebts:    true,
		}
	}
	return Capabilities{}
}
