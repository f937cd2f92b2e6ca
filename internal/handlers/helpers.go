package handlers

import (
	"net/http"

	"syncdeck-api/internal/apperrors"
	"syncdeck-api/internal/models"
	"syncdeck-api/internal/realtime"
	"syncdeck-api/internal/roles"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// currentActor rebuilds the authenticated principal the JWT middleware
// stored in the request context.
func currentActor(c *gin.Context) (roles.Actor, bool) {
	actor := roles.Actor{
		ID:       c.GetString("user_id"),
		Username: c.GetString("username"),
		Role:     models.UserRole(c.GetString("role")),
		TeamID:   c.GetString("team_id"),
	}
	if actor.ID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
		return actor, false
	}
	return actor, true
}

// abortWithError maps a domain error onto its HTTP status.
func abortWithError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
}

// publishTaskEvent pushes a task event to everyone attached to the task:
// assignees and the assigner.
func publishTaskEvent(db *gorm.DB, task *models.Task, eventType, actorName string) {
	recipients := []string{task.AssignerID}
	var assignments []models.TaskAssignee
	if err := db.Where("task_id = ?", task.ID).Find(&assignments).Error; err == nil {
		for _, a := range assignments {
			recipients = append(recipients, a.UserID)
		}
	}
	realtime.GetHub().Publish(recipients, realtime.Event{
		Type:   eventType,
		TaskID: task.ID,
		Actor:  actorName,
	})
}
