package handlers

import (
	"log"
	"net/http"
	"time"

	"syncdeck-api/internal/database"
	"syncdeck-api/internal/models"
	"syncdeck-api/internal/notify"
	"syncdeck-api/internal/uploads"
	"syncdeck-api/internal/workflow"

	"github.com/gin-gonic/gin"
)

var (
	taskNotifier  notify.Notifier = notify.FromEnv()
	evidenceStore uploads.Store
)

// SetEvidenceStore wires the blob store used for evidence uploads.
func SetEvidenceStore(s uploads.Store) {
	evidenceStore = s
}

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Title       string                 `json:"title" binding:"required"`
	Description string                 `json:"description"`
	Criticality models.TaskCriticality `json:"criticality"`
	Deadline    *time.Time             `json:"deadline"`
	IsInternal  bool                   `json:"isInternal"`
	AssignedTo  []string               `json:"assignedTo"`
}

// UpdateTaskRequest represents the request payload for updating a task
type UpdateTaskRequest struct {
	Title              *string                 `json:"title"`
	Description        *string                 `json:"description"`
	Status             *models.TaskStatus      `json:"status"`
	Criticality        *models.TaskCriticality `json:"criticality"`
	ProgressPercentage *int                    `json:"progressPercentage"`
	Deadline           *time.Time              `json:"deadline"`
	AssignedTo         *[]string               `json:"assignedTo"`
}

// ProgressUpdateRequest represents an assignee's progress report
type ProgressUpdateRequest struct {
	ProgressPercentage *int              `json:"progressPercentage" binding:"required"`
	Status             models.TaskStatus `json:"status" binding:"required"`
	SummaryText        string            `json:"summaryText"`
}

/*
*
GetTasks handles GET /api/tasks
Returns the tasks visible to the authenticated user based on their role.
*/
func GetTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	tasks, err := workflow.ListTasks(database.GetDB(), actor)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// GetTaskByID handles GET /api/tasks/:id
func GetTaskByID(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	task, err := workflow.GetTask(database.GetDB(), actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

/*
*
CreateTask handles POST /api/tasks
Creates a new task and its assignment records, notifies assignees
(best-effort), and pushes a realtime event.
*/
func CreateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	task, err := workflow.CreateTask(database.GetDB(), actor, workflow.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Criticality: req.Criticality,
		Deadline:    req.Deadline,
		IsInternal:  req.IsInternal,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	notifyAssignees(task, actor.Username, req.AssignedTo)
	publishTaskEvent(database.GetDB(), task, "task_created", actor.Username)

	c.JSON(http.StatusCreated, task)
}

// notifyAssignees delivers assignment notifications. Failures are logged,
// never returned: a lost email must not fail the creation.
func notifyAssignees(task *models.Task, assignerName string, assigneeIDs []string) {
	if len(assigneeIDs) == 0 {
		return
	}
	var users []models.User
	if err := database.GetDB().Where("id IN ?", assigneeIDs).Find(&users).Error; err != nil {
		log.Println("failed to load assignees for notification:", err)
		return
	}
	deadline := ""
	if task.Deadline != nil {
		deadline = task.Deadline.Format("2006-01-02 15:04")
	}
	summary := notify.TaskSummary{
		Title:        task.Title,
		Description:  task.Description,
		AssignerName: assignerName,
		Criticality:  string(task.Criticality),
		Deadline:     deadline,
	}
	for _, u := range users {
		if err := taskNotifier.NotifyAssignment(u.Email, u.Username, summary); err != nil {
			log.Println("failed to send assignment notification:", err)
		}
	}
}

// UpdateTask handles PUT /api/tasks/:id
// Legacy direct update path: a status change to completed here awards
// achievement credit exactly once.
func UpdateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	task, err := workflow.UpdateTask(database.GetDB(), actor, c.Param("id"), workflow.UpdateTaskInput{
		Title:              req.Title,
		Description:        req.Description,
		Status:             req.Status,
		Criticality:        req.Criticality,
		ProgressPercentage: req.ProgressPercentage,
		Deadline:           req.Deadline,
		AssignedTo:         req.AssignedTo,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	publishTaskEvent(database.GetDB(), task, "task_updated", actor.Username)
	c.JSON(http.StatusOK, task)
}

// SubmitProgress handles POST /api/tasks/:id/progress
func SubmitProgress(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req ProgressUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := workflow.SubmitProgress(database.GetDB(), actor, c.Param("id"), workflow.ProgressInput{
		ProgressPercentage: *req.ProgressPercentage,
		Status:             req.Status,
		SummaryText:        req.SummaryText,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	publishTaskEvent(database.GetDB(), task, "task_updated", actor.Username)
	c.JSON(http.StatusOK, task)
}

// ApproveTask handles POST /api/tasks/:id/approve
func ApproveTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	task, err := workflow.Approve(database.GetDB(), actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	publishTaskEvent(database.GetDB(), task, "task_approved", actor.Username)
	c.JSON(http.StatusOK, task)
}

// MarkViewed handles POST /api/tasks/:id/viewed
func MarkViewed(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := workflow.MarkViewed(database.GetDB(), actor, c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task marked as viewed"})
}

// DeleteTask handles DELETE /api/tasks/:id
func DeleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	taskID := c.Param("id")
	if err := workflow.DeleteTask(database.GetDB(), actor, taskID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"id":      taskID,
	})
}

// CommentRequest carries a comment body
type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateComment handles POST /api/tasks/:id/comments
func CreateComment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := workflow.AddComment(database.GetDB(), actor, c.Param("id"), req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// GetComments handles GET /api/tasks/:id/comments
func GetComments(c *gin.Context) {
	if _, ok := currentActor(c); !ok {
		return
	}
	comments, err := workflow.ListComments(database.GetDB(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

// UpdateComment handles PUT /api/tasks/:id/comments/:commentId
func UpdateComment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := workflow.UpdateComment(database.GetDB(), actor, c.Param("id"), c.Param("commentId"), req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteComment handles DELETE /api/tasks/:id/comments/:commentId
func DeleteComment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := workflow.DeleteComment(database.GetDB(), actor, c.Param("id"), c.Param("commentId")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Comment deleted successfully",
		"id":      c.Param("commentId"),
	})
}

// HelpRequestRequest carries the reason for a help request
type HelpRequestRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreateHelpRequest handles POST /api/tasks/:id/help-request
func CreateHelpRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req HelpRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	helpReq, err := workflow.CreateHelpRequest(database.GetDB(), actor, c.Param("id"), req.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, helpReq)
}

// UploadEvidence handles POST /api/tasks/:id/evidence
func UploadEvidence(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if evidenceStore == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Evidence storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	taskID := c.Param("id")
	url, err := evidenceStore.Save(taskID, fileHeader.Filename, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store evidence"})
		return
	}

	if err := workflow.AttachEvidence(database.GetDB(), actor, taskID, url, fileHeader.Filename); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"filename": fileHeader.Filename, "url": url})
}

// GetTimeline handles GET /api/tasks/:id/timeline
func GetTimeline(c *gin.Context) {
	if _, ok := currentActor(c); !ok {
		return
	}
	activities, err := workflow.ListActivities(database.GetDB(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities, "count": len(activities)})
}
