package handlers

import (
	"errors"
	"net/http"
	"time"

	"syncdeck-api/internal/apperrors"
	"syncdeck-api/internal/cache"
	"syncdeck-api/internal/database"
	"syncdeck-api/internal/export"
	"syncdeck-api/internal/models"
	"syncdeck-api/internal/roles"
	"syncdeck-api/internal/workflow"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// overviewCache shields the group head dashboard from recomputing the
// aggregate counts on every poll.
var overviewCache = cache.New[string, gin.H]()

const overviewTTL = 30 * time.Second

// GetAchievementStats handles GET /api/users/:id/achievement-stats
// The read reconciles the stored counters against the task table before
// returning them.
func GetAchievementStats(c *gin.Context) {
	if _, ok := currentActor(c); !ok {
		return
	}

	stats, err := workflow.ReconcileAchievements(database.GetDB(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// canViewAchievements applies the shared read rule: self, unit head over a
// teammate, or group head.
func canViewAchievements(db *gorm.DB, actor roles.Actor, userID string) error {
	if actor.ID == userID || actor.Role == models.RoleGroupHead {
		return nil
	}
	if actor.Role == models.RoleUnitHead {
		var target models.User
		if err := db.First(&target, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user not found")
			}
			return err
		}
		if target.TeamID == actor.TeamID {
			return nil
		}
	}
	return apperrors.PermissionDenied("not authorized to view this user's achievements")
}

// completedTasksInPeriod loads a user's completed tasks filtered by either a
// named period (week/month) or an explicit date range, newest first.
func completedTasksInPeriod(db *gorm.DB, userID, period, startDate, endDate string) ([]models.Task, error) {
	query := db.Where("assignee_id = ? AND status = ?", userID, models.StatusCompleted)

	switch {
	case period == "week":
		query = query.Where("completed_at >= ?", time.Now().AddDate(0, 0, -7))
	case period == "month":
		query = query.Where("completed_at >= ?", time.Now().AddDate(0, 0, -30))
	case startDate != "" && endDate != "":
		start, err := time.Parse(time.RFC3339, startDate)
		if err != nil {
			start, err = time.Parse("2006-01-02", startDate)
		}
		if err != nil {
			return nil, apperrors.Validation("invalid date format")
		}
		end, err := time.Parse(time.RFC3339, endDate)
		if err != nil {
			end, err = time.Parse("2006-01-02", endDate)
		}
		if err != nil {
			return nil, apperrors.Validation("invalid date format")
		}
		query = query.Where("completed_at >= ? AND completed_at <= ?", start, end)
	}

	var tasks []models.Task
	err := query.Order("completed_at desc").Find(&tasks).Error
	return tasks, err
}

// GetAchievements handles GET /api/achievements/:id
func GetAchievements(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	userID := c.Param("id")
	if err := canViewAchievements(database.GetDB(), actor, userID); err != nil {
		abortWithError(c, err)
		return
	}

	tasks, err := completedTasksInPeriod(database.GetDB(), userID,
		c.DefaultQuery("period", "month"), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

// ExportAchievements handles GET /api/achievements/:id/export
// Streams the report as CSV or PDF.
func ExportAchievements(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	userID := c.Param("id")
	if err := canViewAchievements(database.GetDB(), actor, userID); err != nil {
		abortWithError(c, err)
		return
	}

	var user models.User
	if err := database.GetDB().First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		}
		return
	}

	period := c.DefaultQuery("period", "month")
	tasks, err := completedTasksInPeriod(database.GetDB(), userID,
		period, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	rows := make([]export.CompletedTask, 0, len(tasks))
	for _, task := range tasks {
		assignerName := "N/A"
		var assigner models.User
		if err := database.GetDB().First(&assigner, "id = ?", task.AssignerID).Error; err == nil {
			assignerName = assigner.Username
		}
		rows = append(rows, export.CompletedTask{
			Title:        task.Title,
			Description:  task.Description,
			CompletedAt:  task.CompletedAt,
			Criticality:  task.Criticality,
			AssignerName: assignerName,
		})
	}

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		content, err := export.GenerateCSV(rows, user.Username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate CSV"})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=achievements_"+user.Username+"_"+period+".csv")
		c.Data(http.StatusOK, "text/csv", content)
	case "pdf":
		content, err := export.GeneratePDF(rows, user.Username, period)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=achievements_"+user.Username+"_"+period+".pdf")
		c.Data(http.StatusOK, "application/pdf", content)
	default:
		abortWithError(c, apperrors.Validation("invalid format. Use 'csv' or 'pdf'"))
	}
}

// GetAnalytics handles GET /api/analytics (group head only)
// Returns global task totals, per-team counts, and a status breakdown.
func GetAnalytics(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if actor.Role != models.RoleGroupHead {
		abortWithError(c, apperrors.PermissionDenied("not authorized"))
		return
	}

	if cached, ok := overviewCache.Get("overview"); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	db := database.GetDB()

	var totalTasks, completedTasks int64
	if err := db.Model(&models.Task{}).Count(&totalTasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
		return
	}
	if err := db.Model(&models.Task{}).Where("status = ?", models.StatusCompleted).Count(&completedTasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
		return
	}

	var teams []models.Team
	if err := db.Find(&teams).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
		return
	}
	teamData := make([]gin.H, 0, len(teams))
	for _, team := range teams {
		members := db.Model(&models.User{}).Select("id").Where("team_id = ?", team.ID)
		var teamTasks, teamCompleted int64
		if err := db.Model(&models.Task{}).Where("assignee_id IN (?)", members).Count(&teamTasks).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
			return
		}
		if err := db.Model(&models.Task{}).
			Where("assignee_id IN (?) AND status = ?", members, models.StatusCompleted).
			Count(&teamCompleted).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
			return
		}
		teamData = append(teamData, gin.H{
			"name":      team.Name,
			"tasks":     teamTasks,
			"completed": teamCompleted,
		})
	}

	type statusRow struct {
		Status string
		Count  int64
	}
	var statusRows []statusRow
	if err := db.Model(&models.Task{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
		return
	}
	statusData := make([]gin.H, 0, len(statusRows))
	for _, row := range statusRows {
		statusData = append(statusData, gin.H{"name": row.Status, "value": row.Count})
	}

	overview := gin.H{
		"total_tasks":     totalTasks,
		"completed_tasks": completedTasks,
		"pending_tasks":   totalTasks - completedTasks,
		"team_data":       teamData,
		"status_data":     statusData,
	}
	overviewCache.Set("overview", overview, overviewTTL)
	c.JSON(http.StatusOK, overview)
}
