// Copyright (c) 2026 Maildeck. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maildeck/maildeck/internal/platform/sec"
)

/*
TestAuthorize covers the explicit authorization decision for the two-tier
role model.
*/
func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		claims   *sec.AuthClaims
		required sec.Role
		allowed  bool
	}{
		{"nil_claims", nil, sec.RoleMember, false},
		{"member_needs_member", &sec.AuthClaims{Role: "member"}, sec.RoleMember, true},
		{"member_needs_admin", &sec.AuthClaims{Role: "member"}, sec.RoleAdmin, false},
		{"admin_needs_admin", &sec.AuthClaims{Role: "admin"}, sec.RoleAdmin, true},
		{"admin_needs_member", &sec.AuthClaims{Role: "admin"}, sec.RoleMember, true},
		{"unknown_role", &sec.AuthClaims{Role: "superuser"}, sec.RoleMember, false},
		{"empty_role", &sec.AuthClaims{Role: ""}, sec.RoleMember, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := sec.Authorize(tt.claims, tt.required)

			assert.Equal(t, tt.allowed, decision.Allowed())
			if !tt.allowed {
				assert.NotEmpty(t, decision.Reason())
			} else {
				assert.Empty(t, decision.Reason())
			}
		})
	}
}

/*
TestRoleFromAdminFlag maps the stored boolean onto the role model.
*/
func TestRoleFromAdminFlag(t *testing.T) {
	assert.Equal(t, sec.RoleAdmin, sec.RoleFromAdminFlag(true))
	assert.Equal(t, sec.RoleMember, sec.RoleFromAdminFlag(false))
}

/*
TestRole_AtLeast checks privilege ordering, including unknown roles.
*/
func TestRole_AtLeast(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleMember))
	assert.True(t, sec.RoleMember.AtLeast(sec.RoleMember))
	assert.False(t, sec.RoleMember.AtLeast(sec.RoleAdmin))
	assert.False(t, sec.Role("ghost").AtLeast(sec.RoleMember))
}
