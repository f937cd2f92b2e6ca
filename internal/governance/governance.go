// Package governance implements the role-transition workflows: user deletion
// requests, promotion requests, direct demotion, and the per-team seat
// constraints (one unit head, one backup unit head). The single-pending and
// seat invariants are check-then-write sequences, so every mutation runs in
// a transaction and seat checks are repeated at review time.
package governance

import (
	"errors"
	"time"

	"syncdeck-api/internal/apperrors"
	"syncdeck-api/internal/models"
	"syncdeck-api/internal/roles"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckSeatFree returns a Conflict naming the incumbent if the team already
// holds a user in the given singleton role. excludeUserID ignores the user
// being reassigned.
func CheckSeatFree(tx *gorm.DB, teamID string, role models.UserRole, excludeUserID string) error {
	if teamID == "" {
		return nil
	}
	if role != models.RoleUnitHead && role != models.RoleBackupUnitHead {
		return nil
	}
	var incumbent models.User
	err := tx.Where("team_id = ? AND role = ? AND id <> ?", teamID, role, excludeUserID).
		First(&incumbent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if role == models.RoleUnitHead {
		return apperrors.Conflict("team already has a unit head: %s", incumbent.Username)
	}
	return apperrors.Conflict("team already has a backup unit head: %s", incumbent.Username)
}

// AssignRole changes a user's role directly (group head path), enforcing the
// seat constraints inside the caller's transaction.
func AssignRole(tx *gorm.DB, user *models.User, newRole models.UserRole) error {
	if err := CheckSeatFree(tx, user.TeamID, newRole, user.ID); err != nil {
		return err
	}
	user.Role = newRole
	return tx.Save(user).Error
}

// RequestDeletion raises a deletion request for a member of the requester's
// team. At most one pending request may exist per target user.
func RequestDeletion(db *gorm.DB, actor roles.Actor, targetUserID, reason string) (*models.UserDeletionRequest, error) {
	if !roles.CanRequestDeletion(actor.Role) {
		return nil, apperrors.PermissionDenied("only unit heads can request user deletion")
	}
	request := &models.UserDeletionRequest{
		ID:            uuid.NewString(),
		UserID:        targetUserID,
		RequestedByID: actor.ID,
		Status:        models.ReviewPending,
		Reason:        reason,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.First(&target, "id = ?", targetUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user not found")
			}
			return err
		}
		if target.Role != models.RoleMember {
			return apperrors.PermissionDenied("can only request deletion of members")
		}
		if target.TeamID != actor.TeamID {
			return apperrors.PermissionDenied("can only request deletion of members in your own team")
		}

		var pending int64
		if err := tx.Model(&models.UserDeletionRequest{}).
			Where("user_id = ? AND status = ?", targetUserID, models.ReviewPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return apperrors.Conflict("there is already a pending deletion request for this user")
		}
		return tx.Create(request).Error
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// ListDeletionRequests returns deletion requests for group head review,
// optionally filtered by status. Newest first.
func ListDeletionRequests(db *gorm.DB, actor roles.Actor, status models.ReviewStatus) ([]models.UserDeletionRequest, error) {
	if !roles.CanReviewRequests(actor.Role) {
		return nil, apperrors.PermissionDenied("only group heads can view deletion requests")
	}
	query := db.Order("created_at desc")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var requests []models.UserDeletionRequest
	err := query.Find(&requests).Error
	return requests, err
}

// ReviewDeletion approves or rejects a pending deletion request. Approval
// deletes the target user and the request record together; rejection marks
// the request with the reviewer and leaves the user untouched.
func ReviewDeletion(db *gorm.DB, actor roles.Actor, requestID string, approved bool) (*models.UserDeletionRequest, error) {
	if !roles.CanReviewRequests(actor.Role) {
		return nil, apperrors.PermissionDenied("only group heads can review deletion requests")
	}
	var request models.UserDeletionRequest
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("deletion request not found")
			}
			return err
		}
		if request.Status != models.ReviewPending {
			return apperrors.InvalidState("this request has already been reviewed. Current status: %s", request.Status)
		}

		now := time.Now()
		request.ReviewedAt = &now
		request.ReviewedByID = actor.ID

		if !approved {
			request.Status = models.ReviewRejected
			return tx.Save(&request).Error
		}

		request.Status = models.ReviewApproved
		var target models.User
		if err := tx.First(&target, "id = ?", request.UserID).Error; err == nil {
			if err := tx.Delete(&target).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// The request record leaves with the user it targeted.
		return tx.Delete(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// RequestPromotion raises a promotion request for a member of the
// requester's team. Only promotion to backup unit head is supported, the
// team's backup seat must be open, and at most one pending request may exist
// per target user.
func RequestPromotion(db *gorm.DB, actor roles.Actor, targetUserID string, targetRole models.UserRole, reason string) (*models.PromotionRequest, error) {
	if !roles.CanRequestPromotion(actor.Role) {
		return nil, apperrors.PermissionDenied("only unit heads can request promotions")
	}
	if targetRole != models.RoleBackupUnitHead {
		return nil, apperrors.Validation("can only promote to backup unit head role")
	}
	request := &models.PromotionRequest{
		ID:            uuid.NewString(),
		UserID:        targetUserID,
		RequestedByID: actor.ID,
		TargetRole:    models.RoleBackupUnitHead,
		Status:        models.ReviewPending,
		Reason:        reason,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.First(&target, "id = ?", targetUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user not found")
			}
			return err
		}
		if target.Role != models.RoleMember {
			return apperrors.PermissionDenied("can only promote members")
		}
		if target.TeamID != actor.TeamID {
			return apperrors.PermissionDenied("can only promote members in your own team")
		}
		if err := CheckSeatFree(tx, actor.TeamID, models.RoleBackupUnitHead, ""); err != nil {
			return err
		}

		var pending int64
		if err := tx.Model(&models.PromotionRequest{}).
			Where("user_id = ? AND status = ?", targetUserID, models.ReviewPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return apperrors.Conflict("there is already a pending promotion request for this user")
		}
		return tx.Create(request).Error
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// ListPromotionRequests returns promotion requests for group head review,
// optionally filtered by status. Newest first.
func ListPromotionRequests(db *gorm.DB, actor roles.Actor, status models.ReviewStatus) ([]models.PromotionRequest, error) {
	if !roles.CanReviewRequests(actor.Role) {
		return nil, apperrors.PermissionDenied("only group heads can view promotion requests")
	}
	query := db.Order("created_at desc")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var requests []models.PromotionRequest
	err := query.Find(&requests).Error
	return requests, err
}

// ReviewPromotion approves or rejects a pending promotion request. Approval
// re-checks the backup seat before assigning the role, guarding against a
// seat filled between request creation and review.
func ReviewPromotion(db *gorm.DB, actor roles.Actor, requestID string, approved bool) (*models.PromotionRequest, error) {
	if !roles.CanReviewRequests(actor.Role) {
		return nil, apperrors.PermissionDenied("only group heads can review promotion requests")
	}
	var request models.PromotionRequest
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("promotion request not found")
			}
			return err
		}
		if request.Status != models.ReviewPending {
			return apperrors.InvalidState("this request has already been reviewed. Current status: %s", request.Status)
		}

		now := time.Now()
		request.ReviewedAt = &now
		request.ReviewedByID = actor.ID

		if !approved {
			request.Status = models.ReviewRejected
			return tx.Save(&request).Error
		}

		request.Status = models.ReviewApproved
		var target models.User
		if err := tx.First(&target, "id = ?", request.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user to promote no longer exists")
			}
			return err
		}
		if err := CheckSeatFree(tx, target.TeamID, models.RoleBackupUnitHead, target.ID); err != nil {
			return err
		}
		target.Role = request.TargetRole
		if err := tx.Save(&target).Error; err != nil {
			return err
		}
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// Demote directly returns a backup unit head in the actor's team to member.
// No approval workflow applies.
func Demote(db *gorm.DB, actor roles.Actor, targetUserID string) (*models.User, error) {
	if !roles.CanDemote(actor.Role) {
		return nil, apperrors.PermissionDenied("only unit heads can demote backup unit heads")
	}
	var target models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&target, "id = ?", targetUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user not found")
			}
			return err
		}
		if target.Role != models.RoleBackupUnitHead {
			return apperrors.InvalidState("can only demote backup unit heads. Current role: %s", target.Role)
		}
		if target.TeamID != actor.TeamID {
			return apperrors.PermissionDenied("can only demote backup unit heads in your own team")
		}
		target.Role = models.RoleMember
		return tx.Save(&target).Error
	})
	if err != nil {
		return nil, err
	}
	return &target, nil
}

// DeleteUser removes a user directly (group head only). Any outstanding
// approved deletion request for that user is removed in the same
// transaction.
func DeleteUser(db *gorm.DB, actor roles.Actor, targetUserID string) error {
	if actor.Role != models.RoleGroupHead {
		return apperrors.PermissionDenied("only group heads can delete users")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.First(&target, "id = ?", targetUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user not found")
			}
			return err
		}
		if err := tx.Delete(&target).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND status = ?", targetUserID, models.ReviewApproved).
			Delete(&models.UserDeletionRequest{}).Error
	})
}
