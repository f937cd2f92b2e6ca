package roles

import (
	"testing"

	"syncdeck-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestRolePredicates(t *testing.T) {
	require.True(t, IsHead(models.RoleGroupHead))
	require.True(t, IsHead(models.RoleUnitHead))
	require.True(t, IsHead(models.RoleBackupUnitHead))
	require.False(t, IsHead(models.RoleMember))

	require.False(t, IsUnitLead(models.RoleGroupHead))
	require.True(t, IsUnitLead(models.RoleUnitHead))
	require.True(t, IsUnitLead(models.RoleBackupUnitHead))

	require.True(t, CanCreateTask(models.RoleGroupHead))
	require.False(t, CanCreateTask(models.RoleMember))

	// Internal tasks belong to the unit, so only unit leads create them.
	require.False(t, CanCreateInternalTask(models.RoleGroupHead))
	require.True(t, CanCreateInternalTask(models.RoleUnitHead))
	require.True(t, CanCreateInternalTask(models.RoleBackupUnitHead))

	require.True(t, CanApprove(models.RoleUnitHead))
	require.False(t, CanApprove(models.RoleMember))

	require.True(t, CanRequestDeletion(models.RoleBackupUnitHead))
	require.False(t, CanRequestDeletion(models.RoleGroupHead))

	require.True(t, CanRequestPromotion(models.RoleUnitHead))
	require.False(t, CanRequestPromotion(models.RoleBackupUnitHead))

	require.True(t, CanReviewRequests(models.RoleGroupHead))
	require.False(t, CanReviewRequests(models.RoleUnitHead))

	require.True(t, CanDemote(models.RoleUnitHead))
	require.False(t, CanDemote(models.RoleBackupUnitHead))
}

func TestCanCreateUserWithRole(t *testing.T) {
	require.True(t, CanCreateUserWithRole(models.RoleGroupHead, models.RoleUnitHead))
	require.True(t, CanCreateUserWithRole(models.RoleGroupHead, models.RoleMember))
	require.True(t, CanCreateUserWithRole(models.RoleUnitHead, models.RoleMember))
	require.False(t, CanCreateUserWithRole(models.RoleUnitHead, models.RoleBackupUnitHead))
	require.False(t, CanCreateUserWithRole(models.RoleMember, models.RoleMember))
}

func TestCanDeleteTask(t *testing.T) {
	task := &models.Task{ID: "t-1", AssignerID: "u-1"}

	require.True(t, CanDeleteTask("u-1", models.RoleMember, task))
	require.True(t, CanDeleteTask("u-2", models.RoleUnitHead, task))
	require.False(t, CanDeleteTask("u-2", models.RoleMember, task))
}
