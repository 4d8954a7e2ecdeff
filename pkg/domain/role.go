package domain

import dErrors "truetrace/pkg/domain-errors"

// Role is the supply chain position of an authenticated actor.
// Invariant: the value must be one of the supported roles.
//
// Usage: construct via ParseRole at trust boundaries; direct casting bypasses
// validation.
type Role string

// Supported roles.
const (
	RoleManufacturer Role = "Manufacturer"
	RoleWholesaler   Role = "Wholesaler"
	RoleRetailer     Role = "Retailer"
	RoleConsumer     Role = "Consumer"
)

// validRoles is the single source of truth for valid roles.
var validRoles = map[Role]bool{
	RoleManufacturer: true,
	RoleWholesaler:   true,
	RoleRetailer:     true,
	RoleConsumer:     true,
}

// AllRoles lists every role, in supply chain order.
func AllRoles() []Role {
	return []Role{RoleManufacturer, RoleWholesaler, RoleRetailer, RoleConsumer}
}

// ParseRole constructs a Role from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role: "+s)
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
