package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"syncdeck-api/internal/middleware"
	"syncdeck-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func userRouter() *gin.Engine {
	r := gin.New()
	protected := r.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware())
	protected.GET("/users", GetAllUsers)
	protected.POST("/users", CreateUser)
	protected.GET("/users/me", GetMe)
	protected.PUT("/users/:id", UpdateUser)
	protected.DELETE("/users/:id", DeleteUser)
	protected.POST("/users/:id/demote", DemoteUser)
	protected.POST("/deletion-requests", CreateDeletionRequest)
	protected.GET("/deletion-requests", GetDeletionRequests)
	protected.POST("/deletion-requests/:id/review", ReviewDeletionRequest)
	protected.POST("/promotion-requests", CreatePromotionRequest)
	protected.GET("/promotion-requests", GetPromotionRequests)
	protected.POST("/promotion-requests/:id/review", ReviewPromotionRequest)
	return r
}

func TestCreateUser_GroupHeadCreatesUnitHead(t *testing.T) {
	db := setupHandlerDB(t)
	groupHead := seedUserWithPassword(t, db, "gh-1", "root", "x", models.RoleGroupHead, "")

	r := userRouter()
	w := doJSON(t, r, http.MethodPost, "/api/users", tokenFor(t, groupHead), map[string]any{
		"username": "alice",
		"password": "s3cret",
		"role":     "unit_head",
		"teamId":   "team-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, models.RoleUnitHead, resp.Role)
	require.Equal(t, "team-1", resp.TeamID)

	// The response never carries the password hash.
	require.NotContains(t, w.Body.String(), "password")

	// Second unit head for the same team hits the seat constraint.
	w = doJSON(t, r, http.MethodPost, "/api/users", tokenFor(t, groupHead), map[string]any{
		"username": "mallory",
		"password": "s3cret",
		"role":     "unit_head",
		"teamId":   "team-1",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateUser_UnitHeadLimits(t *testing.T) {
	db := setupHandlerDB(t)
	unitHead := seedUserWithPassword(t, db, "uh-1", "alice", "x", models.RoleUnitHead, "team-1")
	member := seedUserWithPassword(t, db, "m-0", "eve", "x", models.RoleMember, "team-1")

	r := userRouter()

	// Members cannot create users at all.
	w := doJSON(t, r, http.MethodPost, "/api/users", tokenFor(t, member), map[string]any{
		"username": "bob", "password": "x",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	// Unit heads cannot create other heads.
	w = doJSON(t, r, http.MethodPost, "/api/users", tokenFor(t, unitHead), map[string]any{
		"username": "bob", "password": "x", "role": "unit_head",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	// Members they create land in their own team.
	w = doJSON(t, r, http.MethodPost, "/api/users", tokenFor(t, unitHead), map[string]any{
		"username": "bob", "password": "x",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "team-1", resp.TeamID)
	require.Equal(t, models.RoleMember, resp.Role)

	// But not in someone else's team.
	w = doJSON(t, r, http.MethodPost, "/api/users", tokenFor(t, unitHead), map[string]any{
		"username": "carol", "password": "x", "teamId": "team-2",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := setupHandlerDB(t)
	groupHead := seedUserWithPassword(t, db, "gh-1", "root", "x", models.RoleGroupHead, "")
	seedUserWithPassword(t, db, "u-1", "alice", "x", models.RoleMember, "team-1")

	r := userRouter()
	w := doJSON(t, r, http.MethodPost, "/api/users", tokenFor(t, groupHead), map[string]any{
		"username": "alice", "password": "x",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestGetMe(t *testing.T) {
	db := setupHandlerDB(t)
	member := seedUserWithPassword(t, db, "m-1", "bob", "x", models.RoleMember, "team-1")

	r := userRouter()
	w := doJSON(t, r, http.MethodGet, "/api/users/me", tokenFor(t, member), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"username":"bob"`)
}

func TestUpdateUser_SelfAndRoleChange(t *testing.T) {
	db := setupHandlerDB(t)
	groupHead := seedUserWithPassword(t, db, "gh-1", "root", "x", models.RoleGroupHead, "")
	member := seedUserWithPassword(t, db, "m-1", "bob", "x", models.RoleMember, "team-1")
	other := seedUserWithPassword(t, db, "m-2", "carol", "x", models.RoleMember, "team-1")

	r := userRouter()

	// Members can edit themselves but not others.
	w := doJSON(t, r, http.MethodPut, "/api/users/m-1", tokenFor(t, member), map[string]any{
		"email": "bob@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/users/"+other.ID, tokenFor(t, member), map[string]any{
		"email": "hijack@example.com",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	// Group head role changes go through the seat check.
	w = doJSON(t, r, http.MethodPut, "/api/users/m-1", tokenFor(t, groupHead), map[string]any{
		"role": "unit_head",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/users/"+other.ID, tokenFor(t, groupHead), map[string]any{
		"role": "unit_head",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestDeletionRequestFlow(t *testing.T) {
	db := setupHandlerDB(t)
	groupHead := seedUserWithPassword(t, db, "gh-1", "root", "x", models.RoleGroupHead, "")
	unitHead := seedUserWithPassword(t, db, "uh-1", "alice", "x", models.RoleUnitHead, "team-1")
	member := seedUserWithPassword(t, db, "m-1", "bob", "x", models.RoleMember, "team-1")

	r := userRouter()

	w := doJSON(t, r, http.MethodPost, "/api/deletion-requests", tokenFor(t, unitHead), map[string]any{
		"userId": member.ID,
		"reason": "left the org",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var request models.UserDeletionRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &request))

	// Duplicate pending request is a conflict.
	w = doJSON(t, r, http.MethodPost, "/api/deletion-requests", tokenFor(t, unitHead), map[string]any{
		"userId": member.ID,
		"reason": "again",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// Only the group head can list and review.
	w = doJSON(t, r, http.MethodGet, "/api/deletion-requests", tokenFor(t, unitHead), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/deletion-requests", tokenFor(t, groupHead), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"count":1`)

	w = doJSON(t, r, http.MethodPost, "/api/deletion-requests/"+request.ID+"/review", tokenFor(t, groupHead), map[string]any{
		"approved": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Approval removed the target user.
	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", member.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestPromotionRequestFlow(t *testing.T) {
	db := setupHandlerDB(t)
	groupHead := seedUserWithPassword(t, db, "gh-1", "root", "x", models.RoleGroupHead, "")
	unitHead := seedUserWithPassword(t, db, "uh-1", "alice", "x", models.RoleUnitHead, "team-1")
	member := seedUserWithPassword(t, db, "m-1", "bob", "x", models.RoleMember, "team-1")

	r := userRouter()

	w := doJSON(t, r, http.MethodPost, "/api/promotion-requests", tokenFor(t, unitHead), map[string]any{
		"userId":     member.ID,
		"targetRole": "backup_unit_head",
		"reason":     "strong quarter",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var request models.PromotionRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &request))

	w = doJSON(t, r, http.MethodPost, "/api/promotion-requests/"+request.ID+"/review", tokenFor(t, groupHead), map[string]any{
		"approved": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var promoted models.User
	require.NoError(t, db.First(&promoted, "id = ?", member.ID).Error)
	require.Equal(t, models.RoleBackupUnitHead, promoted.Role)

	// Reviewing again is rejected with the request's current state.
	w = doJSON(t, r, http.MethodPost, "/api/promotion-requests/"+request.ID+"/review", tokenFor(t, groupHead), map[string]any{
		"approved": false,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "approved")
}

func TestDemoteUser_Endpoint(t *testing.T) {
	db := setupHandlerDB(t)
	unitHead := seedUserWithPassword(t, db, "uh-1", "alice", "x", models.RoleUnitHead, "team-1")
	backup := seedUserWithPassword(t, db, "buh-1", "bob", "x", models.RoleBackupUnitHead, "team-1")

	r := userRouter()
	w := doJSON(t, r, http.MethodPost, "/api/users/"+backup.ID+"/demote", tokenFor(t, unitHead), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "demoted to Member")

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", backup.ID).Error)
	require.Equal(t, models.RoleMember, user.Role)
}
