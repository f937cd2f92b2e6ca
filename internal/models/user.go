package models

import (
	"gorm.io/gorm"
)

// UserRole represents a user's position in the organization hierarchy
type UserRole string

const (
	RoleGroupHead      UserRole = "group_head"
	RoleUnitHead       UserRole = "unit_head"
	RoleBackupUnitHead UserRole = "backup_unit_head"
	RoleMember         UserRole = "member"
)

// User represents a user in the system
type User struct {
	ID       string   `json:"id" gorm:"primaryKey"`
	Username string   `json:"username" gorm:"unique;not null"`
	Email    string   `json:"email"`
	Password string   `json:"-" gorm:"not null"`
	Role     UserRole `json:"role" gorm:"not null;default:'member'"`
	TeamID   string   `json:"teamId" gorm:"column:team_id;index"`
	gorm.Model
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// Team represents a named group of users.
// Role seat constraints (one unit head, one backup per team) are enforced
// in the governance package, not at schema level.
type Team struct {
	ID   string `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"unique;not null"`
	gorm.Model
}

// TableName specifies the table name for Team Model
func (Team) TableName() string {
	return "teams"
}
