package domain

// Role identifies the class of an actor in the system.
type Role string

const (
	RoleCorporate Role = "CORPORATE"
	RoleBank      Role = "BANK"
	RoleAdmin     Role = "ADMIN"
	RoleAuditor   Role = "AUDITOR"
)

// Valid reports whether the role is one of the known actor classes.
func (r Role) Valid() bool {
	switch r {
	case RoleCorporate, RoleBank, RoleAdmin, RoleAuditor:
		return true
	}
	return false
}

// Relationship describes how an actor relates to a specific trade.
type Relationship string

const (
	RelationshipBuyer        Relationship = "BUYER"
	RelationshipSeller       Relationship = "SELLER"
	RelationshipAssignedBank Relationship = "ASSIGNED_BANK"
	RelationshipAny          Relationship = "ANY"
	RelationshipNone         Relationship = ""
)

// Actor is the identity attempting an operation.
type Actor struct {
	ID   string
	Role Role
}
