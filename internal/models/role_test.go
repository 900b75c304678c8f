package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	for _, role := range RoleOrder {
		assert.True(t, role.Valid(), "role %s", role)
	}
	assert.False(t, Role("X").Valid())
	assert.False(t, Role("").Valid())
}

func TestRoleLimitsCoverFullRoster(t *testing.T) {
	total := 0
	for _, role := range RoleOrder {
		total += RoleLimits[role]
	}
	assert.Equal(t, 25, total)
}
