package domain

import "slices"

// Role is resolved once per request from the user's admin flag and group membership.
type Role int

const (
	RoleCustomer Role = iota
	RoleDeliveryCrew
	RoleManager
	RoleAdmin
)

// Group names as stored in the groups table.
const (
	GroupManager      = "Manager"
	GroupDeliveryCrew = "Delivery Crew"
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleManager:
		return "manager"
	case RoleDeliveryCrew:
		return "delivery_crew"
	default:
		return "customer"
	}
}

// AtLeast reports whether r ranks at or above other in the precedence
// Admin > Manager > Delivery Crew > Customer.
func (r Role) AtLeast(other Role) bool {
	return r >= other
}

// ResolveRole picks the highest-precedence role the user qualifies for.
func ResolveRole(isAdmin bool, groups []string) Role {
	switch {
	case isAdmin:
		return RoleAdmin
	case slices.Contains(groups, GroupManager):
		return RoleManager
	case slices.Contains(groups, GroupDeliveryCrew):
		return RoleDeliveryCrew
	default:
		return RoleCustomer
	}
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID   int64
	Username string
	Role     Role
}
