package workflow

import (
	"errors"
	"time"

	"syncdeck-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// awardCompletion increments the assignee's achievement counters for a newly
// completed task. The row is created on first use.
func awardCompletion(tx *gorm.DB, task *models.Task) error {
	if task.AssigneeID == "" {
		return nil
	}
	stats, err := loadOrCreateStats(tx, task.AssigneeID)
	if err != nil {
		return err
	}
	stats.TotalCompletedTasks++
	if task.Criticality == models.CriticalityHigh {
		stats.CriticalTasksCompleted++
	}
	stats.LastUpdated = time.Now()
	return tx.Save(stats).Error
}

// reverseCompletion decrements the assignee's counters when a completed task
// is deleted. Counters never go below zero.
func reverseCompletion(tx *gorm.DB, task *models.Task) error {
	var stats models.MemberAchievement
	err := tx.Where("user_id = ?", task.AssigneeID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if stats.TotalCompletedTasks > 0 {
		stats.TotalCompletedTasks--
	}
	if task.Criticality == models.CriticalityHigh && stats.CriticalTasksCompleted > 0 {
		stats.CriticalTasksCompleted--
	}
	stats.LastUpdated = time.Now()
	return tx.Save(&stats).Error
}

func loadOrCreateStats(tx *gorm.DB, userID string) (*models.MemberAchievement, error) {
	var stats models.MemberAchievement
	err := tx.Where("user_id = ?", userID).First(&stats).Error
	if err == nil {
		return &stats, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	stats = models.MemberAchievement{
		ID:          uuid.NewString(),
		UserID:      userID,
		LastUpdated: time.Now(),
	}
	if err := tx.Create(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// ReconcileAchievements recomputes a user's completion counters from the
// task table and overwrites the stored aggregate when it has drifted. The
// incremental writes stay the fast path; this is the correctness backstop,
// called on every stats read and available on demand.
func ReconcileAchievements(db *gorm.DB, userID string) (*models.MemberAchievement, error) {
	var stats *models.MemberAchievement
	err := db.Transaction(func(tx *gorm.DB) error {
		var total, critical int64
		if err := tx.Model(&models.Task{}).
			Where("assignee_id = ? AND status = ?", userID, models.StatusCompleted).
			Count(&total).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).
			Where("assignee_id = ? AND status = ? AND criticality = ?",
				userID, models.StatusCompleted, models.CriticalityHigh).
			Count(&critical).Error; err != nil {
			return err
		}

		s, err := loadOrCreateStats(tx, userID)
		if err != nil {
			return err
		}
		if s.TotalCompletedTasks != int(total) || s.CriticalTasksCompleted != int(critical) {
			s.TotalCompletedTasks = int(total)
			s.CriticalTasksCompleted = int(critical)
			s.LastUpdated = time.Now()
			if err := tx.Save(s).Error; err != nil {
				return err
			}
		}
		stats = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
