// Package kanban implements the operations of the task board: it loads the
// entities an operation touches, applies the access rules and the input
// validation, and hands the mutation to the store.
package kanban

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"taskboard/internal/models"
)

// UserRepository is the user directory.
type UserRepository interface {
	CreateUser(ctx context.Context, email, fullname, passwordHash string) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	MissingUsers(ctx context.Context, ids []int64) ([]int64, error)
}

// BoardRepository is the board registry.
type BoardRepository interface {
	ListBoardsForUser(ctx context.Context, userID int64) ([]models.Board, error)
	GetBoard(ctx context.Context, id int64) (models.Board, error)
	ListBoardMembers(ctx context.Context, boardID int64) ([]models.UserSummary, error)
	CreateBoard(ctx context.Context, b models.Board) (models.Board, error)
	UpdateBoard(ctx context.Context, b models.Board, replaceMembers bool) (models.Board, error)
	DeleteBoard(ctx context.Context, id int64) error
}

// TaskRepository is the task registry.
type TaskRepository interface {
	ListTasksByBoard(ctx context.Context, boardID int64) ([]models.Task, error)
	ListTasksByAssignee(ctx context.Context, userID int64) ([]models.Task, error)
	ListTasksByReviewer(ctx context.Context, userID int64) ([]models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, t models.Task) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// CommentRepository is the comment log.
type CommentRepository interface {
	ListComments(ctx context.Context, taskID int64) ([]models.Comment, error)
	GetComment(ctx context.Context, taskID, commentID int64) (models.Comment, error)
	AddComment(ctx context.Context, taskID, authorID int64, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, taskID, commentID int64) error
}

// Store bundles every repository; *storage.Store implements it.
type Store interface {
	UserRepository
	BoardRepository
	TaskRepository
	CommentRepository
}

// TokenIssuer issues and verifies bearer tokens.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
	Verify(raw string) (int64, error)
}

// Service exposes the task board operations.
type Service struct {
	users    UserRepository
	boards   BoardRepository
	tasks    TaskRepository
	comments CommentRepository
	tokens   TokenIssuer
	validate *validator.Validate
	logger   *slog.Logger
}

// New constructs the service on top of store.
func New(store Store, tokens TokenIssuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    store,
		boards:   store,
		tasks:    store,
		comments: store,
		tokens:   tokens,
		validate: newValidator(),
		logger:   logger,
	}
}
