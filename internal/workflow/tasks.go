// Package workflow implements the task lifecycle: creation, the status state
// machine, progress updates, the multi-level approval engine, and the
// achievement counters maintained as completion side effects. All mutating
// operations run inside a single transaction.
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

// CreateTaskInput carries the fields accepted when creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Criticality models.TaskCriticality
	Deadline    *time.Time
	IsInternal  bool
	AssignedTo  []string
}

var validStatuses = map[models.TaskStatus]bool{
	models.StatusOngoing:                  true,
	models.StatusNotStarted:               true,
	models.StatusContinuous:               true,
	models.StatusBlocked:                  true,
	models.StatusWaitingOnExternal:        true,
	models.StatusNeedsReview:              true,
	models.StatusPendingApproval:          true,
	models.StatusPendingGroupHeadApproval: true,
	models.StatusCompleted:                true,
}

// ValidateStatus rejects unknown status values.
func ValidateStatus(s models.TaskStatus) error {
	if !validStatuses[s] {
		return apperrors.Validation("invalid task status: %s", s)
	}
	return nil
}

// ValidateProgress enforces the progress contract: 0-100 in steps of 5.
func ValidateProgress(pct int) error {
	if pct < 0 || pct > 100 {
		return apperrors.Validation("progress percentage must be between 0 and 100, got %d", pct)
	}
	if pct%5 != 0 {
		return apperrors.Validation("progress percentage must be a multiple of 5, got %d", pct)
	}
	return nil
}

// CreateTask creates a task with its assignment records. The legacy
// single-assignee pointer is set to the first assignee so both
// representations stay consistent.
func CreateTask(db *gorm.DB, actor roles.Actor, input CreateTaskInput) (*models.Task, error) {
	if !roles.CanCreateTask(actor.Role) {
		return nil, apperrors.PermissionDenied("members cannot create tasks")
	}
	if input.IsInternal && !roles.CanCreateInternalTask(actor.Role) {
		return nil, apperrors.PermissionDenied("only unit heads or backups can create internal tasks")
	}
	if input.Title == "" {
		return nil, apperrors.Validation("task title is required")
	}

	criticality := input.Criticality
	if criticality == "" {
		criticality = models.CriticalityMedium
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Status:      models.StatusOngoing,
		Criticality: criticality,
		Deadline:    input.Deadline,
		AssignerID:  actor.ID,
		IsInternal:  input.IsInternal,
	}
	if len(input.AssignedTo) > 0 {
		task.AssigneeID = input.AssignedTo[0]
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// Assignees must exist before we record assignments
		if len(input.AssignedTo) > 0 {
			var count int64
			if err := tx.Model(&models.User{}).Where("id IN ?", input.AssignedTo).Count(&count).Error; err != nil {
				return err
			}
			if count != int64(len(input.AssignedTo)) {
				return apperrors.NotFound("one or more assignees do not exist")
			}
		}

		if err := tx.Create(task).Error; err != nil {
			return err
		}
		now := time.Now()
		for _, userID := range input.AssignedTo {
			assignment := models.TaskAssignee{
				TaskID:     task.ID,
				UserID:     userID,
				AssignedAt: now,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTaskInput carries the optional fields of a full task update
type UpdateTaskInput struct {
	Title              *string
	Description        *string
	Status             *models.TaskStatus
	Criticality        *models.TaskCriticality
	ProgressPercentage *int
	Deadline           *time.Time
	AssignedTo         *[]string
}

// UpdateTask applies a partial update to a task. This is the legacy direct
// path: a status change to COMPLETED here sets completed_at and awards
// achievement credit, but only the first time the task completes.
func UpdateTask(db *gorm.DB, actor roles.Actor, taskID string, input UpdateTaskInput) (*models.Task, error) {
	if input.Status != nil {
		if err := ValidateStatus(*input.Status); err != nil {
			return nil, err
		}
	}
	if input.ProgressPercentage != nil {
		if err := ValidateProgress(*input.ProgressPercentage); err != nil {
			return nil, err
		}
	}

	var task models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("task not found")
			}
			return err
		}
		if actor.ID != task.AssignerID && !roles.IsHead(actor.Role) {
			return apperrors.PermissionDenied("only the assigner or heads can edit tasks")
		}

		if input.Status != nil && *input.Status != task.Status {
			if err := logActivity(tx, task.ID, actor.ID, models.ActivityStatusChange,
				fmt.Sprintf("Status changed to %s", *input.Status)); err != nil {
				return err
			}
		}
		if input.ProgressPercentage != nil && *input.ProgressPercentage != task.ProgressPercentage {
			if err := logActivity(tx, task.ID, actor.ID, models.ActivityProgressUpdate,
				fmt.Sprintf("Progress updated to %d%%", *input.ProgressPercentage)); err != nil {
				return err
			}
		}

		if input.Title != nil {
			task.Title = *input.Title
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.Criticality != nil {
			task.Criticality = *input.Criticality
		}
		if input.ProgressPercentage != nil {
			task.ProgressPercentage = *input.ProgressPercentage
		}
		if input.Deadline != nil {
			task.Deadline = input.Deadline
		}
		if input.AssignedTo != nil {
			if err := replaceAssignees(tx, &task, *input.AssignedTo); err != nil {
				return err
			}
		}
		if input.Status != nil {
			task.Status = *input.Status
			if task.Status == models.StatusCompleted && task.CompletedAt == nil {
				now := time.Now()
				task.CompletedAt = &now
				if err := awardCompletion(tx, &task); err != nil {
					return err
				}
			}
		}

		return tx.Save(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// replaceAssignees swaps the assignment set and keeps the legacy pointer
// mirroring the first assignee.
func replaceAssignees(tx *gorm.DB, task *models.Task, userIDs []string) error {
	if len(userIDs) > 0 {
		var count int64
		if err := tx.Model(&models.User{}).Where("id IN ?", userIDs).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(userIDs)) {
			return apperrors.NotFound("one or more assignees do not exist")
		}
	}
	if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskAssignee{}).Error; err != nil {
		return err
	}
	now := time.Now()
	for _, userID := range userIDs {
		assignment := models.TaskAssignee{TaskID: task.ID, UserID: userID, AssignedAt: now}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
	}
	if len(userIDs) > 0 {
		task.AssigneeID = userIDs[0]
	} else {
		task.AssigneeID = ""
	}
	return nil
}

// DeleteTask removes a task and its assignment records. A final activity is
// logged before removal, and if the task was completed the assignee's
// achievement counters are reversed (never below zero).
func DeleteTask(db *gorm.DB, actor roles.Actor, taskID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("task not found")
			}
			return err
		}
		if !roles.CanDeleteTask(actor.ID, actor.Role, &task) {
			return apperrors.PermissionDenied("not authorized to delete this task")
		}

		if err := logActivity(tx, task.ID, actor.ID, models.ActivityStatusChange,
			fmt.Sprintf("Task deleted by %s", actor.Username)); err != nil {
			return err
		}

		if task.Status == models.StatusCompleted && task.AssigneeID != "" {
			if err := reverseCompletion(tx, &task); err != nil {
				return err
			}
		}

		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskAssignee{}).Error; err != nil {
			return err
		}
		return tx.Delete(&task).Error
	})
}

// MarkViewed stamps the actor's assignment row so the task no longer shows
// the "new" indicator. Idempotent.
func MarkViewed(db *gorm.DB, actor roles.Actor, taskID string) error {
	var assignment models.TaskAssignee
	err := db.Where("task_id = ? AND user_id = ?", taskID, actor.ID).First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("task assignment not found")
		}
		return err
	}
	if assignment.ViewedAt != nil {
		return nil
	}
	now := time.Now()
	return db.Model(&models.TaskAssignee{}).
		Where("task_id = ? AND user_id = ?", taskID, actor.ID).
		Update("viewed_at", &now).Error
}

// logActivity appends an audit entry for a task.
func logActivity(tx *gorm.DB, taskID, userID string, activityType models.ActivityType, description string) error {
	activity := models.TaskActivity{
		ID:           uuid.NewString(),
		TaskID:       taskID,
		UserID:       userID,
		ActivityType: activityType,
		Description:  description,
	}
	return tx.Create(&activity).Error
}

// ListActivities returns a task's audit trail, newest first.
func ListActivities(db *gorm.DB, taskID string) ([]models.TaskActivity, error) {
	var activities []models.TaskActivity
	err := db.Where("task_id = ?", taskID).Order("created_at desc").Find(&activities).Error
	return activities, err
}
