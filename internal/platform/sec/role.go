// Copyright (c) 2026 Maildeck. All rights reserved.

package sec

import "fmt"

// # Role Model

// Role represents a user's privilege level in the two-tier model.
type Role string

const (
	// RoleMember is a regular authenticated user.
	RoleMember Role = "member"

	// RoleAdmin can manage every account and every mailbox.
	RoleAdmin Role = "admin"
)

// roleRank maps each role to a comparable privilege level.
var roleRank = map[Role]int{
	RoleMember: 1,
	RoleAdmin:  2,
}

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether the role holds privileges equal to or above other.
// Unknown roles rank below every valid role.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other]
}

// RoleFromAdminFlag maps the stored is_admin flag onto a [Role].
func RoleFromAdminFlag(isAdmin bool) Role {
	if isAdmin {
		return RoleAdmin
	}
	return RoleMember
}

// # Authorization Decisions

// Decision is the outcome of an authorization check. A Decision is either
// allowed or carries the reason it was denied; handlers act on the decision
// rather than on the raw claims.
type Decision struct {
	allowed bool
	reason  string
}

// Allowed reports whether the check passed.
func (d Decision) Allowed() bool {
	return d.allowed
}

// Reason returns why the check failed. Empty when allowed.
func (d Decision) Reason() string {
	return d.reason
}

// Authorize checks the caller's claims against a required role and returns
// an explicit [Decision]. A nil claims value means the request carried no
// verified identity.
func Authorize(claims *AuthClaims, required Role) Decision {
	if claims == nil {
		return Decision{reason: "no authenticated user"}
	}

	callerRole := Role(claims.Role)
	if !callerRole.IsValid() {
		return Decision{reason: fmt.Sprintf("unknown role %q", claims.Role)}
	}

	if !callerRole.AtLeast(required) {
		return Decision{reason: fmt.Sprintf("role %q lacks %q privileges", callerRole, required)}
	}

	return Decision{allowed: true}
}
