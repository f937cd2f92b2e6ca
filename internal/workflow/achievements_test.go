package workflow

import (
	"testing"

	"syncdeck-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestReconcileAchievements_CreatesRowOnFirstRead(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "m-1", models.RoleMember, "team-1")

	stats, err := ReconcileAchievements(db, "m-1")
	require.NoError(t, err)
	require.Equal(t, 0, stats.TotalCompletedTasks)
	require.Equal(t, 0, stats.CriticalTasksCompleted)
}

func TestReconcileAchievements_FixesDriftedCounters(t *testing.T) {
	db := newTestDB(t)
	unitHead := seedUser(t, db, "uh-1", models.RoleUnitHead, "team-1")
	seedUser(t, db, "m-1", models.RoleMember, "team-1")

	tasks := []models.Task{
		{ID: "t-1", Title: "a", Status: models.StatusCompleted, Criticality: models.CriticalityHigh, AssigneeID: "m-1", AssignerID: unitHead.ID},
		{ID: "t-2", Title: "b", Status: models.StatusCompleted, Criticality: models.CriticalityMedium, AssigneeID: "m-1", AssignerID: unitHead.ID},
		{ID: "t-3", Title: "c", Status: models.StatusOngoing, Criticality: models.CriticalityHigh, AssigneeID: "m-1", AssignerID: unitHead.ID},
	}
	for i := range tasks {
		require.NoError(t, db.Create(&tasks[i]).Error)
	}

	// Stored counters drifted away from the task table.
	require.NoError(t, db.Create(&models.MemberAchievement{
		ID:                     "s-1",
		UserID:                 "m-1",
		TotalCompletedTasks:    7,
		CriticalTasksCompleted: 5,
	}).Error)

	stats, err := ReconcileAchievements(db, "m-1")
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalCompletedTasks)
	require.Equal(t, 1, stats.CriticalTasksCompleted)

	var stored models.MemberAchievement
	require.NoError(t, db.Where("user_id = ?", "m-1").First(&stored).Error)
	require.Equal(t, 2, stored.TotalCompletedTasks)
	require.Equal(t, 1, stored.CriticalTasksCompleted)
}

func TestReconcileAchievements_NoWriteWhenConsistent(t *testing.T) {
	db := newTestDB(t)
	unitHead := seedUser(t, db, "uh-1", models.RoleUnitHead, "team-1")
	seedUser(t, db, "m-1", models.RoleMember, "team-1")

	task := models.Task{ID: "t-1", Title: "a", Status: models.StatusCompleted, Criticality: models.CriticalityLow, AssigneeID: "m-1", AssignerID: unitHead.ID}
	require.NoError(t, db.Create(&task).Error)

	require.NoError(t, db.Create(&models.MemberAchievement{
		ID:                  "s-1",
		UserID:              "m-1",
		TotalCompletedTasks: 1,
	}).Error)
	var before models.MemberAchievement
	require.NoError(t, db.Where("user_id = ?", "m-1").First(&before).Error)

	stats, err := ReconcileAchievements(db, "m-1")
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalCompletedTasks)
	require.Equal(t, before.LastUpdated.Unix(), stats.LastUpdated.Unix())
}

func TestReconcileAchievements_IgnoresDeletedTasks(t *testing.T) {
	db := newTestDB(t)
	unitHead := seedUser(t, db, "uh-1", models.RoleUnitHead, "team-1")
	seedUser(t, db, "m-1", models.RoleMember, "team-1")

	task := models.Task{ID: "t-1", Title: "a", Status: models.StatusCompleted, AssigneeID: "m-1", AssignerID: unitHead.ID}
	require.NoError(t, db.Create(&task).Error)
	require.NoError(t, DeleteTask(db, actorFor(unitHead), task.ID))

	stats, err := ReconcileAchievements(db, "m-1")
	require.NoError(t, err)
	require.Equal(t, 0, stats.TotalCompletedTasks)
}
