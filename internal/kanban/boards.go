package kanban

import (
	"context"
	"log/slog"

	"taskboard/internal/access"
	"taskboard/internal/models"
)

// BoardInput describes a new board.
type BoardInput struct {
	Title     string
	MemberIDs []int64
	DueDate   *models.Date
}

// BoardPatch is a partial board update. A non-nil MemberIDs replaces the
// member set; the owner always stays a member.
type BoardPatch struct {
	Title     *string
	MemberIDs *[]int64
	DueDate   Field[models.Date]
}

// BoardUpdate is the result of UpdateBoard with the expanded people.
type BoardUpdate struct {
	Board   models.Board
	Owner   models.UserSummary
	Members []models.UserSummary
}

// ListBoards returns the boards user owns or is a member of.
func (s *Service) ListBoards(ctx context.Context, user models.User) ([]models.Board, error) {
	if _, err := access.RequireAuthenticated(&user); err != nil {
		return nil, err
	}
	return s.boards.ListBoardsForUser(ctx, user.ID)
}

// CreateBoard creates a board owned by user.
func (s *Service) CreateBoard(ctx context.Context, user models.User, in BoardInput) (models.Board, error) {
	if _, err := access.RequireAuthenticated(&user); err != nil {
		return models.Board{}, err
	}
	title, err := cleanTitle(in.Title)
	if err != nil {
		return models.Board{}, err
	}
	if err := s.checkUsersExist(ctx, "members", in.MemberIDs); err != nil {
		return models.Board{}, err
	}

	board, err := s.boards.CreateBoard(ctx, models.Board{
		Title:     title,
		OwnerID:   user.ID,
		MemberIDs: in.MemberIDs,
		DueDate:   in.DueDate,
	})
	if err != nil {
		return models.Board{}, err
	}
	s.logger.Info("board created", slog.Int64("board_id", board.ID), slog.Int64("owner_id", user.ID))
	return board, nil
}

// loadBoard fetches a board and checks that user may access it.
func (s *Service) loadBoard(ctx context.Context, user models.User, boardID int64) (models.Board, error) {
	if _, err := access.RequireAuthenticated(&user); err != nil {
		return models.Board{}, err
	}
	board, err := s.boards.GetBoard(ctx, boardID)
	if err != nil {
		return models.Board{}, err
	}
	if err := access.BoardAccess(user.ID, board).Err(); err != nil {
		return models.Board{}, err
	}
	return board, nil
}

// GetBoard returns a board with its members and tasks.
func (s *Service) GetBoard(ctx context.Context, user models.User, boardID int64) (models.BoardDetail, error) {
	board, err := s.loadBoard(ctx, user, boardID)
	if err != nil {
		return models.BoardDetail{}, err
	}
	members, err := s.boards.ListBoardMembers(ctx, board.ID)
	if err != nil {
		return models.BoardDetail{}, err
	}
	tasks, err := s.tasks.ListTasksByBoard(ctx, board.ID)
	if err != nil {
		return models.BoardDetail{}, err
	}
	return models.BoardDetail{
		ID:      board.ID,
		Title:   board.Title,
		OwnerID: board.OwnerID,
		DueDate: board.DueDate,
		Members: members,
		Tasks:   tasks,
	}, nil
}

// UpdateBoard renames a board, changes its due date or replaces its members.
// Owner and members may update.
func (s *Service) UpdateBoard(ctx context.Context, user models.User, boardID int64, patch BoardPatch) (BoardUpdate, error) {
	board, err := s.loadBoard(ctx, user, boardID)
	if err != nil {
		return BoardUpdate{}, err
	}

	if patch.Title != nil {
		if board.Title, err = cleanTitle(*patch.Title); err != nil {
			return BoardUpdate{}, err
		}
	}
	board.DueDate = patch.DueDate.apply(board.DueDate)
	replace := patch.MemberIDs != nil
	if replace {
		if err := s.checkUsersExist(ctx, "members", *patch.MemberIDs); err != nil {
			return BoardUpdate{}, err
		}
		board.MemberIDs = *patch.MemberIDs
	}

	board, err = s.boards.UpdateBoard(ctx, board, replace)
	if err != nil {
		return BoardUpdate{}, err
	}
	members, err := s.boards.ListBoardMembers(ctx, board.ID)
	if err != nil {
		return BoardUpdate{}, err
	}
	result := BoardUpdate{Board: board, Members: members}
	for _, m := range members {
		if m.ID == board.OwnerID {
			result.Owner = m
		}
	}
	return result, nil
}

// DeleteBoard removes a board with its tasks and comments. Only the owner may
// delete.
func (s *Service) DeleteBoard(ctx context.Context, user models.User, boardID int64) error {
	board, err := s.loadBoard(ctx, user, boardID)
	if err != nil {
		return err
	}
	if err := access.BoardOwner(user.ID, board).Err(); err != nil {
		return err
	}
	if err := s.boards.DeleteBoard(ctx, board.ID); err != nil {
		return err
	}
	s.logger.Info("board deleted", slog.Int64("board_id", board.ID), slog.Int64("user_id", user.ID))
	return nil
}
