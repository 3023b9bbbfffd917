package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleManager, RoleApplicator, RoleBasic} {
		assert.True(t, role.Valid(), role)
	}
	assert.False(t, Role("wizard").Valid())
	assert.False(t, Role("").Valid())
}

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role   Role
		can    []Capability
		cannot []Capability
	}{
		{
			role: RoleAdmin,
			can: []Capability{
				CapManageUsers, CapCreateUser, CapManageFields, CapManageWarehouses,
				CapManageStock, CapManageFumigations, CapApplyFumigations, CapViewReports,
			},
		},
		{
			role:   RoleManager,
			can:    []Capability{CapCreateUser, CapManageFields, CapManageWarehouses, CapManageStock, CapManageFumigations, CapViewReports},
			cannot: []Capability{CapManageUsers, CapApplyFumigations},
		},
		{
			role:   RoleApplicator,
			can:    []Capability{CapApplyFumigations, CapViewReports},
			cannot: []Capability{CapManageUsers, CapCreateUser, CapManageFields, CapManageWarehouses, CapManageStock, CapManageFumigations},
		},
		{
			role:   RoleBasic,
			can:    []Capability{CapViewReports},
			cannot: []Capability{CapManageUsers, CapCreateUser, CapManageFields, CapManageWarehouses, CapManageStock, CapManageFumigations, CapApplyFumigations},
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			for _, c := range tt.can {
				assert.True(t, tt.role.Can(c), c)
			}
			for _, c := range tt.cannot {
				assert.False(t, tt.role.Can(c), c)
			}
		})
	}
}

func TestFumigationStatus(t *testing.T) {
	for _, status := range FumigationStatuses {
		assert.True(t, status.Valid(), status)
	}
	assert.False(t, FumigationStatus("paused").Valid())

	assert.Equal(t, "In progress", FumigationInProgress.Label())
	assert.Equal(t, "paused", FumigationStatus("paused").Label())
}

func TestStockStatus(t *testing.T) {
	assert.True(t, StockPurchased.Valid())
	assert.True(t, StockReceived.Valid())
	assert.False(t, StockStatus("lost").Valid())
}
