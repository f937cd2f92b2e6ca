package workflow

import (
	"errors"
	"fmt"
	"time"

	"syncdeck-api/internal/apperrors"
	"syncdeck-api/internal/models"
	"syncdeck-api/internal/roles"

	"gorm.io/gorm"
)

// Approve processes one approval call against a pending task. Depending on
// the original assigner's role the call either grants final approval
// (completing the task and awarding achievement credit) or forwards the task
// to the group head for a second approval. A single call never does both.
func Approve(db *gorm.DB, actor roles.Actor, taskID string) (*models.Task, error) {
	var task models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("task not found")
			}
			return err
		}

		if actor.ID != task.AssignerID && !roles.CanApprove(actor.Role) {
			return apperrors.PermissionDenied("only the assigner or heads can approve tasks")
		}

		if task.Status != models.StatusPendingApproval && task.Status != models.StatusPendingGroupHeadApproval {
			return apperrors.InvalidState("task is not pending approval. Current status: %s", task.Status)
		}

		final := false
		if task.Status == models.StatusPendingGroupHeadApproval {
			// Escalated tasks accept only the group head's word.
			if actor.Role != models.RoleGroupHead {
				return apperrors.PermissionDenied("this task requires group head approval")
			}
			final = true
		} else {
			var assigner models.User
			if err := tx.First(&assigner, "id = ?", task.AssignerID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("task assigner not found")
				}
				return err
			}

			switch {
			case assigner.Role == models.RoleGroupHead:
				if actor.Role == models.RoleGroupHead {
					final = true
				} else {
					// A unit head's approval of a group-head task is only the
					// first stage; escalate and stop.
					task.Status = models.StatusPendingGroupHeadApproval
					if err := logActivity(tx, task.ID, actor.ID, models.ActivityStatusChange,
						fmt.Sprintf("Task approved by %s, forwarded to Group Head for final approval", actor.Username)); err != nil {
						return err
					}
					return tx.Save(&task).Error
				}
			case roles.IsUnitLead(assigner.Role):
				final = true
			default:
				// Assigner is a member: unreachable through task creation,
				// kept as a defensive default.
				final = true
			}
		}

		if !final {
			return nil
		}

		task.Status = models.StatusCompleted
		if task.CompletedAt == nil {
			now := time.Now()
			task.CompletedAt = &now
		}
		if task.AssigneeID != "" {
			if err := awardCompletion(tx, &task); err != nil {
				return err
			}
		}
		if err := logActivity(tx, task.ID, actor.ID, models.ActivityStatusChange,
			fmt.Sprintf("Task approved and marked as completed by %s", actor.Username)); err != nil {
			return err
		}
		return tx.Save(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}
