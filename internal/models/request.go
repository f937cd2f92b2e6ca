package models

import (
	"time"

	"gorm.io/gorm"
)

// ReviewStatus represents the lifecycle of a governance request
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// UserDeletionRequest is raised by a unit head (or backup) to remove a member
// of their team; only a group head may review it. At most one pending request
// may exist per target user.
type UserDeletionRequest struct {
	ID            string       `json:"id" gorm:"primaryKey"`
	UserID        string       `json:"userId" gorm:"index"`
	RequestedByID string       `json:"requestedById"`
	Status        ReviewStatus `json:"status" gorm:"default:'pending'"`
	Reason        string       `json:"reason"`
	ReviewedAt    *time.Time   `json:"reviewedAt"`
	ReviewedByID  string       `json:"reviewedById"`
	gorm.Model
}

// TableName specifies the table name for UserDeletionRequest Model
func (UserDeletionRequest) TableName() string {
	return "user_deletion_requests"
}

// PromotionRequest is raised by a unit head to promote a team member to
// backup unit head; only a group head may review it. The backup seat
// constraint is checked both at creation and again at review time.
type PromotionRequest struct {
	ID            string       `json:"id" gorm:"primaryKey"`
	UserID        string       `json:"userId" gorm:"index"`
	RequestedByID string       `json:"requestedById"`
	TargetRole    UserRole     `json:"targetRole"`
	Status        ReviewStatus `json:"status" gorm:"default:'pending'"`
	Reason        string       `json:"reason"`
	ReviewedAt    *time.Time   `json:"reviewedAt"`
	ReviewedByID  string       `json:"reviewedById"`
	gorm.Model
}

// TableName specifies the table name for PromotionRequest Model
func (PromotionRequest) TableName() string {
	return "promotion_requests"
}
