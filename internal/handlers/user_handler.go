package handlers

import (
	"errors"
	"net/http"

	"syncdeck-api/internal/apperrors"
	"syncdeck-api/internal/database"
	"syncdeck-api/internal/governance"
	"syncdeck-api/internal/models"
	"syncdeck-api/internal/roles"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserResponse is the safe user payload (no password hash)
type UserResponse struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
	TeamID   string          `json:"teamId"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		TeamID:   u.TeamID,
	}
}

// CreateUserRequest represents the payload for creating a user
type CreateUserRequest struct {
	Username string          `json:"username" binding:"required"`
	Password string          `json:"password" binding:"required"`
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
	TeamID   string          `json:"teamId"`
}

// CreateUser handles POST /api/users
// Group heads can create any role; unit heads and backups may only create
// members, auto-scoped to their own team.
func CreateUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleMember
	}

	if !roles.CanManageUsers(actor.Role) {
		abortWithError(c, apperrors.PermissionDenied("insufficient permissions to create users"))
		return
	}
	if !roles.CanCreateUserWithRole(actor.Role, role) {
		abortWithError(c, apperrors.PermissionDenied("unit heads can only create members"))
		return
	}

	teamID := req.TeamID
	if roles.IsUnitLead(actor.Role) {
		if teamID == "" {
			teamID = actor.TeamID
		} else if teamID != actor.TeamID {
			abortWithError(c, apperrors.PermissionDenied("unit heads can only create members in their own team"))
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		ID:       uuid.NewString(),
		Username: req.Username,
		Email:    req.Email,
		Password: string(hash),
		Role:     role,
		TeamID:   teamID,
	}
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflict("username already registered")
		}
		// A fresh unit head or backup still has to fit the team's seat
		if err := governance.CheckSeatFree(tx, teamID, role, user.ID); err != nil {
			return err
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(&user))
}

// GetAllUsers returns all users (protected)
// GET /api/users
func GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := database.GetDB().Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	// Map to safe response payload
	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users": resp,
		"count": len(resp),
	})
}

// GetMe handles GET /api/users/me
func GetMe(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var user models.User
	if err := database.GetDB().First(&user, "id = ?", actor.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		}
		return
	}
	c.JSON(http.StatusOK, toUserResponse(&user))
}

// UpdateUserRequest represents the payload for updating a user
type UpdateUserRequest struct {
	Username *string          `json:"username"`
	Password *string          `json:"password"`
	Email    *string          `json:"email"`
	Role     *models.UserRole `json:"role"`
	TeamID   *string          `json:"teamId"`
}

// UpdateUser handles PUT /api/users/:id
// Users may edit themselves; role and team changes are group head only and
// go through the seat constraints.
func UpdateUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	targetID := c.Param("id")
	isSelf := actor.ID == targetID
	isGroupHead := actor.Role == models.RoleGroupHead
	if !isSelf && !isGroupHead {
		abortWithError(c, apperrors.PermissionDenied("not authorized"))
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user not found")
			}
			return err
		}

		if req.Username != nil && *req.Username != user.Username {
			var count int64
			if err := tx.Model(&models.User{}).Where("username = ?", *req.Username).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperrors.Conflict("username already taken")
			}
			user.Username = *req.Username
		}
		if req.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user.Password = string(hash)
		}
		if req.Email != nil {
			user.Email = *req.Email
		}

		if isGroupHead {
			if req.TeamID != nil {
				user.TeamID = *req.TeamID
			}
			if req.Role != nil {
				return governance.AssignRole(tx, &user, *req.Role)
			}
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(&user))
}

// DeleteUser handles DELETE /api/users/:id (group head only)
func DeleteUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := governance.DeleteUser(database.GetDB(), actor, c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// DemoteUser handles POST /api/users/:id/demote
func DemoteUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	user, err := governance.Demote(database.GetDB(), actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "User " + user.Username + " demoted to Member",
		"user":    toUserResponse(user),
	})
}

// GovernanceRequestCreate is the shared payload for raising deletion and
// promotion requests.
type GovernanceRequestCreate struct {
	UserID     string          `json:"userId" binding:"required"`
	TargetRole models.UserRole `json:"targetRole"`
	Reason     string          `json:"reason"`
}

// ReviewRequest carries the reviewer's verdict
type ReviewRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// CreateDeletionRequest handles POST /api/deletion-requests
func CreateDeletionRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req GovernanceRequestCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := governance.RequestDeletion(database.GetDB(), actor, req.UserID, req.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

// GetDeletionRequests handles GET /api/deletion-requests
func GetDeletionRequests(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	status := models.ReviewStatus(c.DefaultQuery("status", string(models.ReviewPending)))
	requests, err := governance.ListDeletionRequests(database.GetDB(), actor, status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
}

// ReviewDeletionRequest handles POST /api/deletion-requests/:id/review
func ReviewDeletionRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := governance.ReviewDeletion(database.GetDB(), actor, c.Param("id"), *req.Approved)
	if err != nil {
		abortWithError(c, err)
		return
	}
	verdict := "rejected"
	if *req.Approved {
		verdict = "approved"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Deletion request " + verdict,
		"request": request,
	})
}

// CreatePromotionRequest handles POST /api/promotion-requests
func CreatePromotionRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req GovernanceRequestCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := governance.RequestPromotion(database.GetDB(), actor, req.UserID, req.TargetRole, req.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

// GetPromotionRequests handles GET /api/promotion-requests
func GetPromotionRequests(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	status := models.ReviewStatus(c.DefaultQuery("status", string(models.ReviewPending)))
	requests, err := governance.ListPromotionRequests(database.GetDB(), actor, status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
}

// ReviewPromotionRequest handles POST /api/promotion-requests/:id/review
func ReviewPromotionRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := governance.ReviewPromotion(database.GetDB(), actor, c.Param("id"), *req.Approved)
	if err != nil {
		abortWithError(c, err)
		return
	}
	verdict := "rejected"
	if *req.Approved {
		verdict = "approved"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Promotion request " + verdict,
		"request": request,
	})
}
