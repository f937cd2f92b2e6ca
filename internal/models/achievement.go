package models

import (
	"time"

	"gorm.io/gorm"
)

// MemberAchievement holds per-user derived counters maintained incrementally
// on task completion/deletion. The stored counts must always be reconcilable
// from the authoritative task table; the workflow package owns both the fast
// incremental path and the reconciliation backstop.
type MemberAchievement struct {
	ID                     string    `json:"id" gorm:"primaryKey"`
	UserID                 string    `json:"userId" gorm:"index"`
	OnTimeCompletionRate   int       `json:"onTimeCompletionRate" gorm:"default:0"`
	TotalCompletedTasks    int       `json:"totalCompletedTasks" gorm:"default:0"`
	CriticalTasksCompleted int       `json:"criticalTasksCompleted" gorm:"default:0"`
	CurrentNoBlockerStreak int       `json:"currentNoBlockerStreak" gorm:"default:0"`
	LastUpdated            time.Time `json:"lastUpdated"`
	gorm.Model
}

// TableName specifies the table name for MemberAchievement Model
func (MemberAchievement) TableName() string {
	return "member_achievements"
}
