// Package roles centralizes the capability predicates derived from a user's
// role. Every operation consults these instead of repeating inline role
// comparisons, so the authorization rules live in one place.
package roles

import (
	"syncdeck-api/internal/models"
)

// IsHead reports whether the role is any head role (unit, backup, or group).
func IsHead(role models.UserRole) bool {
	return role == models.RoleGroupHead || IsUnitLead(role)
}

// IsUnitLead reports whether the role leads a unit (unit head or backup).
func IsUnitLead(role models.UserRole) bool {
	return role == models.RoleUnitHead || role == models.RoleBackupUnitHead
}

// CanCreateTask reports whether the role may create tasks. Members cannot.
func CanCreateTask(role models.UserRole) bool {
	return role != models.RoleMember
}

// CanCreateInternalTask reports whether the role may create internal tasks,
// which are visible only within the unit.
func CanCreateInternalTask(role models.UserRole) bool {
	return IsUnitLead(role)
}

// CanManageUsers reports whether the role may create users at all. Group
// heads manage everyone; unit leads may only create members in their own
// team (see CanCreateUserWithRole).
func CanManageUsers(role models.UserRole) bool {
	return role == models.RoleGroupHead || IsUnitLead(role)
}

// CanCreateUserWithRole reports whether an actor role may create a user
// holding the target role.
func CanCreateUserWithRole(actor, target models.UserRole) bool {
	if actor == models.RoleGroupHead {
		return true
	}
	if IsUnitLead(actor) {
		return target == models.RoleMember
	}
	return false
}

// CanApprove reports whether the role may participate in task approval at
// all. The approval engine applies the routing rules on top of this.
func CanApprove(role models.UserRole) bool {
	return IsHead(role)
}

// CanRequestDeletion reports whether the role may raise a user deletion
// request.
func CanRequestDeletion(role models.UserRole) bool {
	return IsUnitLead(role)
}

// CanRequestPromotion reports whether the role may raise a promotion
// request. Backups cannot propose their own successor.
func CanRequestPromotion(role models.UserRole) bool {
	return role == models.RoleUnitHead
}

// CanReviewRequests reports whether the role may review governance requests.
func CanReviewRequests(role models.UserRole) bool {
	return role == models.RoleGroupHead
}

// CanDemote reports whether the role may directly demote a backup unit head.
func CanDemote(role models.UserRole) bool {
	return role == models.RoleUnitHead
}

// CanDeleteTask reports whether the actor may delete the given task.
func CanDeleteTask(actorID string, role models.UserRole, task *models.Task) bool {
	return actorID == task.AssignerID || IsHead(role)
}
