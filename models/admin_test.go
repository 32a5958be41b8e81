package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllows(t *testing.T) {
	assert.True(t, Allows(RoleAdmin, nil, PermApproveRegistration))
	assert.False(t, Allows(RoleAdmin, nil, PermResetTournaments))
	assert.True(t, Allows(RoleAdmin, []Permission{PermResetTournaments}, PermResetTournaments))
	assert.True(t, Allows(RoleSuperAdmin, nil, PermManageAdmins))
	assert.False(t, Allows(AdminRole("guest"), nil, PermViewRegistrations))
}

func TestParsePermission(t *testing.T) {
	p, ok := ParsePermission("view_analytics")
	assert.True(t, ok)
	assert.Equal(t, PermViewAnalytics, p)

	_, ok = ParsePermission("drop_database")
	assert.False(t, ok)
}
