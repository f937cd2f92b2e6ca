package workflow

import (
	"testing"

	"syncdeck-api/internal/apperrors"
	"syncdeck-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestListTasks_GroupHeadSeesNonInternalOnly(t *testing.T) {
	db := newTestDB(t)
	groupHead := seedUser(t, db, "gh-1", models.RoleGroupHead, "")
	unitHead := seedUser(t, db, "uh-1", models.RoleUnitHead, "team-1")
	seedUser(t, db, "m-1", models.RoleMember, "team-1")

	_, err := CreateTask(db, actorFor(unitHead), CreateTaskInput{Title: "Visible", AssignedTo: []string{"m-1"}})
	require.NoError(t, err)
	_, err = CreateTask(db, actorFor(unitHead), CreateTaskInput{Title: "Internal", IsInternal: true, AssignedTo: []string{"m-1"}})
	require.NoError(t, err)

	tasks, err := ListTasks(db, actorFor(groupHead))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "Visible", tasks[0].Title)
}

func TestListTasks_UnitHeadSeesTeamTasks(t *testing.T) {
	db := newTestDB(t)
	unitHead := seedUser(t, db, "uh-1", models.RoleUnitHead, "team-1")
	otherHead := seedUser(t, db, "uh-2", models.RoleUnitHead, "team-2")
	seedUser(t, db, "m-1", models.RoleMember, "team-1")
	seedUser(t, db, "m-2", models.RoleMember, "team-2")

	_, err := CreateTask(db, actorFor(unitHead), CreateTaskInput{Title: "Team 1 work", AssignedTo: []string{"m-1"}})
	require.NoError(t, err)
	_, err = CreateTask(db, actorFor(otherHead), CreateTaskInput{Title: "Team 2 work", AssignedTo: []string{"m-2"}})
	require.NoError(t, err)

	tasks, err := ListTasks(db, actorFor(unitHead))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "Team 1 work", tasks[0].Title)
}

func TestListTasks_MemberSeesOwnAssignments(t *testing.T) {
	db := newTestDB(t)
	unitHead := seedUser(t, db, "uh-1", models.RoleUnitHead, "team-1")
	member := seedUser(t, db, "m-1", models.RoleMember, "team-1")
	seedUser(t, db, "m-2", models.RoleMember, "team-1")

	_, err := CreateTask(db, actorFor(unitHead), CreateTaskInput{Title: "Mine", AssignedTo: []string{"m-1"}})
	require.NoError(t, err)
	_, err = CreateTask(db, actorFor(unitHead), CreateTaskInput{Title: "Someone else's", AssignedTo: []string{"m-2"}})
	require.NoError(t, err)

	tasks, err := ListTasks(db, actorFor(member))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "Mine", tasks[0].Title)
	require.True(t, tasks[0].IsNew)
	require.Len(t, tasks[0].Assignees, 1)
	require.Equal(t, "m-1", tasks[0].Assignees[0].ID)
}

func TestGetTask_IsNewClearsAfterViewing(t *testing.T) {
	db := newTestDB(t)
	unitHead := seedUser(t, db, "uh-1", models.RoleUnitHead, "team-1")
	member := seedUser(t, db, "m-1", models.RoleMember, "team-1")

	created, err := CreateTask(db, actorFor(unitHead), CreateTaskInput{Title: "Fresh", AssignedTo: []string{"m-1"}})
	require.NoError(t, err)

	task, err := GetTask(db, actorFor(member), created.ID)
	require.NoError(t, err)
	require.True(t, task.IsNew)

	require.NoError(t, MarkViewed(db, actorFor(member), created.ID))

	task, err = GetTask(db, actorFor(member), created.ID)
	require.NoError(t, err)
	require.False(t, task.IsNew)
}

func TestGetTask_NotFound(t *testing.T) {
	db := newTestDB(t)
	member := seedUser(t, db, "m-1", models.RoleMember, "team-1")

	_, err := GetTask(db, actorFor(member), "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
