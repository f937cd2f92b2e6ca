package handlers

import (
	"net/http"
	"testing"

	"syncdeck-api/internal/middleware"
	"syncdeck-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func teamRouter() *gin.Engine {
	r := gin.New()
	protected := r.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware())
	protected.GET("/teams", GetTeams)
	protected.POST("/teams", CreateTeam)
	protected.DELETE("/teams/:id", DeleteTeam)
	return r
}

func TestCreateTeam_GroupHeadOnly(t *testing.T) {
	db := setupHandlerDB(t)
	groupHead := seedUserWithPassword(t, db, "gh-1", "root", "x", models.RoleGroupHead, "")
	unitHead := seedUserWithPassword(t, db, "uh-1", "alice", "x", models.RoleUnitHead, "team-1")

	r := teamRouter()

	w := doJSON(t, r, http.MethodPost, "/api/teams", tokenFor(t, unitHead), map[string]any{
		"name": "Platform",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/teams", tokenFor(t, groupHead), map[string]any{
		"name": "Platform",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Duplicate names conflict, blank names are invalid.
	w = doJSON(t, r, http.MethodPost, "/api/teams", tokenFor(t, groupHead), map[string]any{
		"name": "Platform",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/teams", tokenFor(t, groupHead), map[string]any{
		"name": "   ",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTeams(t *testing.T) {
	db := setupHandlerDB(t)
	member := seedUserWithPassword(t, db, "m-1", "bob", "x", models.RoleMember, "team-1")
	require.NoError(t, db.Create(&models.Team{ID: "team-1", Name: "Platform"}).Error)

	r := teamRouter()
	w := doJSON(t, r, http.MethodGet, "/api/teams", tokenFor(t, member), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Platform")
}

func TestDeleteTeam(t *testing.T) {
	db := setupHandlerDB(t)
	groupHead := seedUserWithPassword(t, db, "gh-1", "root", "x", models.RoleGroupHead, "")
	require.NoError(t, db.Create(&models.Team{ID: "team-1", Name: "Platform"}).Error)

	r := teamRouter()
	w := doJSON(t, r, http.MethodDelete, "/api/teams/team-1", tokenFor(t, groupHead), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Team{}).Where("id = ?", "team-1").Count(&count).Error)
	require.EqualValues(t, 0, count)
}
