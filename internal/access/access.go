// Package access holds the authorization rules of the task board. Every
// predicate works on entities the caller has already loaded.
package access

import (
	"taskboard/internal/models"
	"taskboard/internal/util"
)

// Decision is the outcome of an authorization predicate.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow grants the operation.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny refuses the operation with a client facing reason.
func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Err returns nil for an allowed decision and an ErrPermissionDenied otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return util.NewPermissionDeniedErrorf("%s", d.Reason)
}

// RequireAuthenticated fails with ErrUnauthenticated when no user is attached.
func RequireAuthenticated(user *models.User) (models.User, error) {
	if user == nil || user.ID == 0 {
		return models.User{}, util.NewUnauthenticatedErrorf("authentication credentials were not provided")
	}
	return *user, nil
}

// BoardAccess allows the owner and the members of the board.
func BoardAccess(userID int64, board models.Board) Decision {
	if board.HasMember(userID) {
		return Allow()
	}
	return Deny("you must be the owner or a member of this board")
}

// BoardOwner allows only the owner of the board.
func BoardOwner(userID int64, board models.Board) Decision {
	if board.OwnerID == userID {
		return Allow()
	}
	return Deny("only the board owner may do this")
}

// TaskDeletion allows the assignee of the task and the owner of its board.
func TaskDeletion(userID int64, task models.Task, board models.Board) Decision {
	if task.AssigneeID() == userID || board.OwnerID == userID {
		return Allow()
	}
	return Deny("only the assignee or the board owner may delete this task")
}

// CommentAuthor allows only the author of the comment. Board owners get no
// exemption.
func CommentAuthor(userID int64, comment models.Comment) Decision {
	if comment.AuthorID == userID {
		return Allow()
	}
	return Deny("only the author may delete this comment")
}
