package workflow

import (
	"errors"
	"fmt"
	"time"

	"syncdeck-api/internal/apperrors"
	"syncdeck-api/internal/models"
	"syncdeck-api/internal/roles"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressInput carries a progress report submitted against a task
type ProgressInput struct {
	ProgressPercentage int
	Status             models.TaskStatus
	SummaryText        string
}

// SubmitProgress records a progress report: it appends a TaskUpdate and an
// activity entry, and moves the task's progress and status. Setting the
// status to COMPLETED through this path stamps completed_at (once) but never
// awards achievement credit; credit flows through the approval engine or the
// legacy direct update.
func SubmitProgress(db *gorm.DB, actor roles.Actor, taskID string, input ProgressInput) (*models.Task, error) {
	if err := ValidateProgress(input.ProgressPercentage); err != nil {
		return nil, err
	}
	if err := ValidateStatus(input.Status); err != nil {
		return nil, err
	}

	var task models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("task not found")
			}
			return err
		}

		ok, err := isParticipant(tx, &task, actor)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.PermissionDenied("only assignees, the assigner, or heads can submit progress")
		}

		update := models.TaskUpdate{
			ID:                 uuid.NewString(),
			TaskID:             task.ID,
			UserID:             actor.ID,
			SummaryText:        input.SummaryText,
			ProgressPercentage: input.ProgressPercentage,
			Status:             input.Status,
		}
		if err := tx.Create(&update).Error; err != nil {
			return err
		}

		summary := input.SummaryText
		if summary == "" {
			summary = "None"
		}
		if err := logActivity(tx, task.ID, actor.ID, models.ActivityProgressUpdate,
			fmt.Sprintf("Updated progress to %d%% and status to %s. Summary: %s",
				input.ProgressPercentage, input.Status, summary)); err != nil {
			return err
		}

		task.ProgressPercentage = input.ProgressPercentage
		task.Status = input.Status
		if task.Status == models.StatusCompleted && task.CompletedAt == nil {
			now := time.Now()
			task.CompletedAt = &now
		}

		return tx.Save(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// isParticipant reports whether the actor may act on the task: an assignee
// (via the assignment set or the legacy pointer), the assigner, or any head.
func isParticipant(tx *gorm.DB, task *models.Task, actor roles.Actor) (bool, error) {
	if actor.ID == task.AssignerID || actor.ID == task.AssigneeID || roles.IsHead(actor.Role) {
		return true, nil
	}
	var count int64
	err := tx.Model(&models.TaskAssignee{}).
		Where("task_id = ? AND user_id = ?", task.ID, actor.ID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
