package kanban

import (
	"context"
	"strings"

	"taskboard/internal/access"
	"taskboard/internal/models"
	"taskboard/internal/util"
)

const maxCommentLength = 10000

// ListComments returns the comments of a task, oldest first.
func (s *Service) ListComments(ctx context.Context, user models.User, taskID int64) ([]models.Comment, error) {
	task, _, err := s.loadTask(ctx, user, taskID)
	if err != nil {
		return nil, err
	}
	return s.comments.ListComments(ctx, task.ID)
}

// AddComment appends a comment by user to a task of a board they belong to.
func (s *Service) AddComment(ctx context.Context, user models.User, taskID int64, content string) (models.Comment, error) {
	task, _, err := s.loadTask(ctx, user, taskID)
	if err != nil {
		return models.Comment{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, util.NewInvalidArgumentErrorf("content: must not be empty")
	}
	if len([]rune(content)) > maxCommentLength {
		return models.Comment{}, util.NewInvalidArgumentErrorf("content: must be at most %d characters", maxCommentLength)
	}
	return s.comments.AddComment(ctx, task.ID, user.ID, content)
}

// DeleteComment removes a comment. Only its author may delete it, provided
// they still belong to the board.
func (s *Service) DeleteComment(ctx context.Context, user models.User, taskID, commentID int64) error {
	task, _, err := s.loadTask(ctx, user, taskID)
	if err != nil {
		return err
	}
	comment, err := s.comments.GetComment(ctx, task.ID, commentID)
	if err != nil {
		return err
	}
	if err := access.CommentAuthor(user.ID, comment).Err(); err != nil {
		return err
	}
	return s.comments.DeleteComment(ctx, task.ID, comment.ID)
}
