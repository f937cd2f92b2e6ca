package routes

import (
	"syncdeck-api/internal/handlers"
	"syncdeck-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes() *gin.Engine {
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "SyncDeck API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Task endpoints
		protectedRoutes.GET("/tasks", handlers.GetTasks)
		protectedRoutes.GET("/tasks/:id", handlers.GetTaskByID)
		protectedRoutes.POST("/tasks", handlers.CreateTask)
		protectedRoutes.PUT("/tasks/:id", handlers.UpdateTask)
		protectedRoutes.POST("/tasks/:id/progress", handlers.SubmitProgress)
		protectedRoutes.POST("/tasks/:id/approve", handlers.ApproveTask)
		protectedRoutes.POST("/tasks/:id/viewed", handlers.MarkViewed)
		protectedRoutes.DELETE("/tasks/:id", handlers.DeleteTask)
		protectedRoutes.GET("/tasks/:id/timeline", handlers.GetTimeline)
		protectedRoutes.POST("/tasks/:id/evidence", handlers.UploadEvidence)

		// Collaboration endpoints
		protectedRoutes.POST("/tasks/:id/comments", handlers.CreateComment)
		protectedRoutes.GET("/tasks/:id/comments", handlers.GetComments)
		protectedRoutes.PUT("/tasks/:id/comments/:commentId", handlers.UpdateComment)
		protectedRoutes.DELETE("/tasks/:id/comments/:commentId", handlers.DeleteComment)
		protectedRoutes.POST("/tasks/:id/help-request", handlers.CreateHelpRequest)

		// User endpoints
		protectedRoutes.GET("/users", handlers.GetAllUsers)
		protectedRoutes.POST("/users", handlers.CreateUser)
		protectedRoutes.GET("/users/me", handlers.GetMe)
		protectedRoutes.PUT("/users/:id", handlers.UpdateUser)
		protectedRoutes.DELETE("/users/:id", handlers.DeleteUser)
		protectedRoutes.POST("/users/:id/demote", handlers.DemoteUser)
		protectedRoutes.GET("/users/:id/achievement-stats", handlers.GetAchievementStats)

		// Governance endpoints
		protectedRoutes.POST("/deletion-requests", handlers.CreateDeletionRequest)
		protectedRoutes.GET("/deletion-requests", handlers.GetDeletionRequests)
		protectedRoutes.POST("/deletion-requests/:id/review", handlers.ReviewDeletionRequest)
		protectedRoutes.POST("/promotion-requests", handlers.CreatePromotionRequest)
		protectedRoutes.GET("/promotion-requests", handlers.GetPromotionRequests)
		protectedRoutes.POST("/promotion-requests/:id/review", handlers.ReviewPromotionRequest)

		// Team endpoints
		protectedRoutes.GET("/teams", handlers.GetTeams)
		protectedRoutes.POST("/teams", handlers.CreateTeam)
		protectedRoutes.DELETE("/teams/:id", handlers.DeleteTeam)

		// Achievement and analytics endpoints
		protectedRoutes.GET("/achievements/:id", handlers.GetAchievements)
		protectedRoutes.GET("/achievements/:id/export", handlers.ExportAchievements)
		protectedRoutes.GET("/analytics", handlers.GetAnalytics)

		// Realtime channel
		protectedRoutes.GET("/ws", handlers.WebSocketHandler)
	}

	return ginRouter
}
