package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	// RoleHomeowner callers exist in the marketplace but may not read job records.
	RoleHomeowner = "homeowner"
	// RoleContractor reads records for its own contractor id only.
	RoleContractor = "contractor"
	// RoleOperator is internal support staff; reads any contractor's records.
	RoleOperator = "operator"
)

func IsOperator(role string) bool { return role == RoleOperator }

func IsKnownRole(role string) bool {
	switch role {
	case RoleHomeowner, RoleContractor, RoleOperator:
		return true
	default:
		return false
	}
}
