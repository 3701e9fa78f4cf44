package kanban

import (
	"context"
	"log/slog"
	"strings"

	"taskboard/internal/access"
	"taskboard/internal/models"
	"taskboard/internal/util"
)

// TaskInput describes a new task. Empty status and priority take the defaults.
type TaskInput struct {
	BoardID     int64
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	AssigneeID  *int64
	ReviewerID  *int64
	DueDate     *models.Date
}

// TaskPatch is a partial task update: only the fields that are set change.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	AssigneeID  Field[int64]
	ReviewerID  Field[int64]
	DueDate     Field[models.Date]
}

// CreateTask adds a task to a board the user belongs to.
func (s *Service) CreateTask(ctx context.Context, user models.User, in TaskInput) (models.Task, error) {
	board, err := s.loadBoard(ctx, user, in.BoardID)
	if err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		BoardID:     board.ID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
		Priority:    in.Priority,
		Assignee:    userRef(in.AssigneeID),
		Reviewer:    userRef(in.ReviewerID),
		DueDate:     in.DueDate,
	}
	if task.Status == "" {
		task.Status = models.StatusToDo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if err := checkTask(&task); err != nil {
		return models.Task{}, err
	}
	if err := s.checkParticipant(ctx, board, "assignee_id", task.Assignee); err != nil {
		return models.Task{}, err
	}
	if err := s.checkParticipant(ctx, board, "reviewer_id", task.Reviewer); err != nil {
		return models.Task{}, err
	}

	created, err := s.tasks.CreateTask(ctx, task)
	if err != nil {
		return models.Task{}, err
	}
	s.logger.Info("task created", slog.Int64("task_id", created.ID), slog.Int64("board_id", board.ID))
	return created, nil
}

// loadTask fetches a task and its board and checks board access.
func (s *Service) loadTask(ctx context.Context, user models.User, taskID int64) (models.Task, models.Board, error) {
	if _, err := access.RequireAuthenticated(&user); err != nil {
		return models.Task{}, models.Board{}, err
	}
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return models.Task{}, models.Board{}, err
	}
	board, err := s.loadBoard(ctx, user, task.BoardID)
	if err != nil {
		return models.Task{}, models.Board{}, err
	}
	return task, board, nil
}

// GetTask returns a task of a board the user belongs to.
func (s *Service) GetTask(ctx context.Context, user models.User, taskID int64) (models.Task, error) {
	task, _, err := s.loadTask(ctx, user, taskID)
	return task, err
}

// ListAssignedToMe returns the tasks assigned to user.
func (s *Service) ListAssignedToMe(ctx context.Context, user models.User) ([]models.Task, error) {
	if _, err := access.RequireAuthenticated(&user); err != nil {
		return nil, err
	}
	return s.tasks.ListTasksByAssignee(ctx, user.ID)
}

// ListReviewing returns the tasks user reviews.
func (s *Service) ListReviewing(ctx context.Context, user models.User) ([]models.Task, error) {
	if _, err := access.RequireAuthenticated(&user); err != nil {
		return nil, err
	}
	return s.tasks.ListTasksByReviewer(ctx, user.ID)
}

// UpdateTask applies patch to a task of a board the user belongs to.
func (s *Service) UpdateTask(ctx context.Context, user models.User, taskID int64, patch TaskPatch) (models.Task, error) {
	task, board, err := s.loadTask(ctx, user, taskID)
	if err != nil {
		return models.Task{}, err
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	task.DueDate = patch.DueDate.apply(task.DueDate)
	if err := checkTask(&task); err != nil {
		return models.Task{}, err
	}

	// untouched participants stay even if they have since left the board
	if patch.AssigneeID.Set {
		task.Assignee = userRef(patch.AssigneeID.Value)
		if err := s.checkParticipant(ctx, board, "assignee_id", task.Assignee); err != nil {
			return models.Task{}, err
		}
	}
	if patch.ReviewerID.Set {
		task.Reviewer = userRef(patch.ReviewerID.Value)
		if err := s.checkParticipant(ctx, board, "reviewer_id", task.Reviewer); err != nil {
			return models.Task{}, err
		}
	}
	return s.tasks.UpdateTask(ctx, task)
}

// DeleteTask removes a task. Only its assignee and the board owner may delete.
func (s *Service) DeleteTask(ctx context.Context, user models.User, taskID int64) error {
	if _, err := access.RequireAuthenticated(&user); err != nil {
		return err
	}
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	board, err := s.boards.GetBoard(ctx, task.BoardID)
	if err != nil {
		return err
	}
	if err := access.TaskDeletion(user.ID, task, board).Err(); err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(ctx, task.ID); err != nil {
		return err
	}
	s.logger.Info("task deleted", slog.Int64("task_id", task.ID), slog.Int64("user_id", user.ID))
	return nil
}

// checkTask normalises and validates the scalar fields of task.
func checkTask(task *models.Task) error {
	title, err := cleanTitle(task.Title)
	if err != nil {
		return err
	}
	task.Title = title
	if !task.Status.Valid() {
		return util.NewInvalidArgumentErrorf("status: must be one of to-do, in-progress, review, done")
	}
	if !task.Priority.Valid() {
		return util.NewInvalidArgumentErrorf("priority: must be one of low, medium, high")
	}
	return nil
}

// checkParticipant requires ref, when set, to be an existing member of board.
func (s *Service) checkParticipant(ctx context.Context, board models.Board, field string, ref *models.UserSummary) error {
	if ref == nil {
		return nil
	}
	if err := s.checkUsersExist(ctx, field, []int64{ref.ID}); err != nil {
		return err
	}
	if !board.HasMember(ref.ID) {
		return util.NewInvalidArgumentErrorf("%s: user %d is not a member of this board", field, ref.ID)
	}
	return nil
}

func userRef(id *int64) *models.UserSummary {
	if id == nil {
		return nil
	}
	return &models.UserSummary{ID: *id}
}
