package handlers

import (
	"errors"
	"net/http"
	"strings"

	"syncdeck-api/internal/apperrors"
	"syncdeck-api/internal/database"
	"syncdeck-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTeamRequest represents the payload for creating a team
type CreateTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateTeam handles POST /api/teams (group head only)
func CreateTeam(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if actor.Role != models.RoleGroupHead {
		abortWithError(c, apperrors.PermissionDenied("not authorized"))
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		abortWithError(c, apperrors.Validation("team name must not be blank"))
		return
	}

	team := models.Team{ID: uuid.NewString(), Name: name}
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Team{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflict("team with this name already exists")
		}
		return tx.Create(&team).Error
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, team)
}

// GetTeams handles GET /api/teams
func GetTeams(c *gin.Context) {
	if _, ok := currentActor(c); !ok {
		return
	}
	var teams []models.Team
	if err := database.GetDB().Find(&teams).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch teams"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams, "count": len(teams)})
}

// DeleteTeam handles DELETE /api/teams/:id (group head only)
func DeleteTeam(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if actor.Role != models.RoleGroupHead {
		abortWithError(c, apperrors.PermissionDenied("not authorized"))
		return
	}

	var team models.Team
	if err := database.GetDB().First(&team, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch team"})
		}
		return
	}
	if err := database.GetDB().Delete(&team).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete team"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Team deleted"})
}
