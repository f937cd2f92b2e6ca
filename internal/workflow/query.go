package workflow

import (
	"errors"

	"syncdeck-api/internal/apperrors"
	"syncdeck-api/internal/models"
	"syncdeck-api/internal/roles"

	"gorm.io/gorm"
)

// ListTasks returns the tasks visible to the actor:
//   - group head: every non-internal task
//   - unit head / backup: tasks assigned to their team's members
//   - member: their own assignments (set or legacy pointer)
func ListTasks(db *gorm.DB, actor roles.Actor) ([]models.Task, error) {
	var tasks []models.Task
	var err error

	switch {
	case actor.Role == models.RoleGroupHead:
		err = db.Where("is_internal = ?", false).Find(&tasks).Error
	case roles.IsUnitLead(actor.Role) && actor.TeamID != "":
		teamMembers := db.Model(&models.User{}).Select("id").Where("team_id = ?", actor.TeamID)
		assignedToTeam := db.Model(&models.TaskAssignee{}).Select("task_id").Where("user_id IN (?)", teamMembers)
		err = db.Where("assignee_id IN (?) OR id IN (?)", teamMembers, assignedToTeam).Find(&tasks).Error
	default:
		ownAssignments := db.Model(&models.TaskAssignee{}).Select("task_id").Where("user_id = ?", actor.ID)
		err = db.Where("assignee_id = ? OR id IN (?)", actor.ID, ownAssignments).Find(&tasks).Error
	}
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		if err := enrichTask(db, &tasks[i], actor); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// GetTask loads a single task with its assignee list and new-task flag.
func GetTask(db *gorm.DB, actor roles.Actor, taskID string) (*models.Task, error) {
	var task models.Task
	if err := db.First(&task, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("task not found")
		}
		return nil, err
	}
	if err := enrichTask(db, &task, actor); err != nil {
		return nil, err
	}
	return &task, nil
}

// enrichTask populates the response-only assignee list and the is_new flag
// for the current actor.
func enrichTask(db *gorm.DB, task *models.Task, actor roles.Actor) error {
	var assignments []models.TaskAssignee
	if err := db.Where("task_id = ?", task.ID).Find(&assignments).Error; err != nil {
		return err
	}

	task.Assignees = make([]models.AssigneeInfo, 0, len(assignments))
	if len(assignments) > 0 {
		ids := make([]string, 0, len(assignments))
		for _, a := range assignments {
			ids = append(ids, a.UserID)
		}
		var users []models.User
		if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return err
		}
		for _, u := range users {
			task.Assignees = append(task.Assignees, models.AssigneeInfo{ID: u.ID, Username: u.Username})
		}
	}

	task.IsNew = false
	for _, a := range assignments {
		if a.UserID == actor.ID {
			task.IsNew = a.ViewedAt == nil
			break
		}
	}
	return nil
}
