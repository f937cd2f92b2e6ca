package workflow

import (
	"errors"
	"fmt"

	"syncdeck-api/internal/apperrors"
	"syncdeck-api/internal/models"
	"syncdeck-api/internal/roles"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AddComment creates a comment on a task and logs the activity.
func AddComment(db *gorm.DB, actor roles.Actor, taskID, content string) (*models.Comment, error) {
	if content == "" {
		return nil, apperrors.Validation("comment content is required")
	}
	comment := &models.Comment{
		ID:       uuid.NewString(),
		Content:  content,
		TaskID:   taskID,
		AuthorID: actor.ID,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := requireTask(tx, taskID); err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return logActivity(tx, taskID, actor.ID, models.ActivityCommentAdded, "Added a comment")
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns a task's comments, newest first.
func ListComments(db *gorm.DB, taskID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := db.Where("task_id = ?", taskID).Order("created_at desc").Find(&comments).Error
	return comments, err
}

// UpdateComment edits a comment. Only its author may do so.
func UpdateComment(db *gorm.DB, actor roles.Actor, taskID, commentID, content string) (*models.Comment, error) {
	var comment models.Comment
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND task_id = ?", commentID, taskID).First(&comment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("comment not found")
			}
			return err
		}
		if comment.AuthorID != actor.ID {
			return apperrors.PermissionDenied("you can only edit your own comments")
		}
		comment.Content = content
		if err := tx.Save(&comment).Error; err != nil {
			return err
		}
		return logActivity(tx, taskID, actor.ID, models.ActivityCommentAdded, "Edited a comment")
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment. Only its author may do so.
func DeleteComment(db *gorm.DB, actor roles.Actor, taskID, commentID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Where("id = ? AND task_id = ?", commentID, taskID).First(&comment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("comment not found")
			}
			return err
		}
		if comment.AuthorID != actor.ID {
			return apperrors.PermissionDenied("you can only delete your own comments")
		}
		if err := logActivity(tx, taskID, actor.ID, models.ActivityCommentAdded, "Deleted a comment"); err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
}

// CreateHelpRequest raises a help request against a task.
func CreateHelpRequest(db *gorm.DB, actor roles.Actor, taskID, reason string) (*models.HelpRequest, error) {
	helpReq := &models.HelpRequest{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		RequesterID: actor.ID,
		Reason:      reason,
		Status:      models.HelpPending,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := requireTask(tx, taskID); err != nil {
			return err
		}
		if err := tx.Create(helpReq).Error; err != nil {
			return err
		}
		return logActivity(tx, taskID, actor.ID, models.ActivityHelpRequested,
			fmt.Sprintf("Requested help: %s", reason))
	})
	if err != nil {
		return nil, err
	}
	return helpReq, nil
}

// AttachEvidence records an uploaded evidence URL on the task. Storage of
// the file itself happens in the uploads package; the workflow only keeps
// the resulting URL and the audit entry.
func AttachEvidence(db *gorm.DB, actor roles.Actor, taskID, url, filename string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("task not found")
			}
			return err
		}
		task.EvidenceURL = url
		if err := tx.Save(&task).Error; err != nil {
			return err
		}
		return logActivity(tx, taskID, actor.ID, models.ActivityEvidenceUploaded,
			fmt.Sprintf("Uploaded evidence: %s", filename))
	})
}

func requireTask(tx *gorm.DB, taskID string) error {
	var count int64
	if err := tx.Model(&models.Task{}).Where("id = ?", taskID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperrors.NotFound("task not found")
	}
	return nil
}
