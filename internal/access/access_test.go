package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
	"taskboard/internal/util"
)

func TestRequireAuthenticated(t *testing.T) {
	_, err := RequireAuthenticated(nil)
	assert.ErrorIs(t, err, util.ErrUnauthenticated)

	_, err = RequireAuthenticated(&models.User{})
	assert.ErrorIs(t, err, util.ErrUnauthenticated)

	u, err := RequireAuthenticated(&models.User{ID: 3, Email: "a@x.com"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, u.ID)
}

func TestBoardPredicates(t *testing.T) {
	board := models.Board{ID: 1, OwnerID: 10, MemberIDs: []int64{10, 20}}

	assert.True(t, BoardAccess(10, board).Allowed)
	assert.True(t, BoardAccess(20, board).Allowed)
	denied := BoardAccess(30, board)
	assert.False(t, denied.Allowed)
	assert.ErrorIs(t, denied.Err(), util.ErrPermissionDenied)
	assert.Equal(t, denied.Reason, denied.Err().Error())

	assert.NoError(t, BoardOwner(10, board).Err())
	assert.ErrorIs(t, BoardOwner(20, board).Err(), util.ErrPermissionDenied)
}

func TestTaskDeletion(t *testing.T) {
	board := models.Board{ID: 1, OwnerID: 10, MemberIDs: []int64{10, 20, 30}}
	task := models.Task{ID: 5, BoardID: 1, Assignee: &models.UserSummary{ID: 20}}

	assert.True(t, TaskDeletion(10, task, board).Allowed)
	assert.True(t, TaskDeletion(20, task, board).Allowed)
	assert.False(t, TaskDeletion(30, task, board).Allowed)

	task.Assignee = nil
	assert.False(t, TaskDeletion(20, task, board).Allowed)
}

func TestCommentAuthor(t *testing.T) {
	comment := models.Comment{ID: 1, AuthorID: 20}
	assert.True(t, CommentAuthor(20, comment).Allowed)
	assert.ErrorIs(t, CommentAuthor(10, comment).Err(), util.ErrPermissionDenied)
}
