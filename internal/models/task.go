package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusOngoing                  TaskStatus = "ongoing"
	StatusNotStarted               TaskStatus = "not_started"
	StatusContinuous               TaskStatus = "continuous"
	StatusBlocked                  TaskStatus = "blocked"
	StatusWaitingOnExternal        TaskStatus = "waiting_on_external"
	StatusNeedsReview              TaskStatus = "needs_review"
	StatusPendingApproval          TaskStatus = "pending_approval"
	StatusPendingGroupHeadApproval TaskStatus = "pending_group_head_approval"
	StatusCompleted                TaskStatus = "completed"
)

// TaskCriticality represents the criticality of a task
type TaskCriticality string

const (
	CriticalityHigh   TaskCriticality = "high"
	CriticalityMedium TaskCriticality = "medium"
	CriticalityLow    TaskCriticality = "low"
)

// AssigneeInfo is the enriched assignee payload returned to clients
type AssigneeInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Task represents a task in the system.
// AssigneeID is the legacy single-assignee pointer; it always mirrors the
// first entry of the task_assignees set when the set is non-empty.
type Task struct {
	ID                 string          `json:"id" gorm:"primaryKey"`
	Title              string          `json:"title" gorm:"not null;index"`
	Description        string          `json:"description"`
	Status             TaskStatus      `json:"status" gorm:"not null;default:'ongoing'"`
	Criticality        TaskCriticality `json:"criticality" gorm:"not null;default:'medium'"`
	ProgressPercentage int             `json:"progressPercentage" gorm:"default:0"`
	Deadline           *time.Time      `json:"deadline"`
	CompletedAt        *time.Time      `json:"completedAt"`
	AssigneeID         string          `json:"assigneeId" gorm:"column:assignee_id;index"`
	AssignerID         string          `json:"assignerId" gorm:"column:assigner_id;not null;index"`
	IsInternal         bool            `json:"isInternal" gorm:"column:is_internal;default:false"`
	EvidenceURL        string          `json:"evidenceUrl" gorm:"column:evidence_url"`

	// Populated for responses, not stored
	Assignees []AssigneeInfo `json:"assignees" gorm:"-"`
	IsNew     bool           `json:"isNew" gorm:"-"`

	gorm.Model
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// TaskAssignee is the junction row linking a task to one of its assignees
type TaskAssignee struct {
	TaskID     string     `json:"taskId" gorm:"primaryKey"`
	UserID     string     `json:"userId" gorm:"primaryKey"`
	AssignedAt time.Time  `json:"assignedAt"`
	ViewedAt   *time.Time `json:"viewedAt"`
}

// TableName specifies the table name for TaskAssignee Model
func (TaskAssignee) TableName() string {
	return "task_assignees"
}

// TaskUpdate is an append-only progress report submitted by an assignee
type TaskUpdate struct {
	ID                 string     `json:"id" gorm:"primaryKey"`
	TaskID             string     `json:"taskId" gorm:"index"`
	UserID             string     `json:"userId"`
	SummaryText        string     `json:"summaryText"`
	ProgressPercentage int        `json:"progressPercentage"`
	Status             TaskStatus `json:"status"`
	gorm.Model
}

// TableName specifies the table name for TaskUpdate Model
func (TaskUpdate) TableName() string {
	return "task_updates"
}

// ActivityType classifies audit log entries on a task
type ActivityType string

const (
	ActivityStatusChange     ActivityType = "status_change"
	ActivityProgressUpdate   ActivityType = "progress_update"
	ActivityCommentAdded     ActivityType = "comment_added"
	ActivityHelpRequested    ActivityType = "help_requested"
	ActivityEvidenceUploaded ActivityType = "evidence_uploaded"
)

// TaskActivity is an append-only audit log entry, displayed newest first
type TaskActivity struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	TaskID       string       `json:"taskId" gorm:"index"`
	UserID       string       `json:"userId"`
	ActivityType ActivityType `json:"activityType"`
	Description  string       `json:"description"`
	gorm.Model
}

// TableName specifies the table name for TaskActivity Model
func (TaskActivity) TableName() string {
	return "task_activities"
}

// Comment is a task-scoped comment, mutable only by its author
type Comment struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Content  string `json:"content" gorm:"not null"`
	TaskID   string `json:"taskId" gorm:"index"`
	AuthorID string `json:"authorId"`
	gorm.Model
}

// TableName specifies the table name for Comment Model
func (Comment) TableName() string {
	return "comments"
}

// HelpRequestStatus represents the lifecycle of a help request
type HelpRequestStatus string

const (
	HelpPending      HelpRequestStatus = "pending"
	HelpAcknowledged HelpRequestStatus = "acknowledged"
	HelpResolved     HelpRequestStatus = "resolved"
)

// HelpRequest is raised by a task participant who is stuck
type HelpRequest struct {
	ID          string            `json:"id" gorm:"primaryKey"`
	TaskID      string            `json:"taskId" gorm:"index"`
	RequesterID string            `json:"requesterId"`
	Reason      string            `json:"reason"`
	Status      HelpRequestStatus `json:"status" gorm:"default:'pending'"`
	ResolvedAt  *time.Time        `json:"resolvedAt"`
	gorm.Model
}

// TableName specifies the table name for HelpRequest Model
func (HelpRequest) TableName() string {
	return "help_requests"
}
