package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/util"
)

const boardColumns = `b.id, b.title, b.owner_id, b.member_count, b.ticket_count, b.tasks_to_do_count, b.tasks_high_prio_count, b.due_date`

func scanBoard(row interface{ Scan(...any) error }) (models.Board, error) {
	var (
		b   models.Board
		due sql.Null[models.Date]
	)
	err := row.Scan(&b.ID, &b.Title, &b.OwnerID, &b.MemberCount, &b.TicketCount, &b.TasksToDoCount, &b.TasksHighPrioCount, &due)
	if due.Valid {
		b.DueDate = &due.V
	}
	return b, err
}

func nullableDate(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// ListBoardsForUser returns the boards userID owns or is a member of, ordered by id.
func (s *Store) ListBoardsForUser(ctx context.Context, userID int64) ([]models.Board, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+boardColumns+` FROM boards b
        WHERE b.owner_id = ? OR EXISTS (SELECT 1 FROM board_members m WHERE m.board_id = b.id AND m.user_id = ?)
        ORDER BY b.id`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	boards := []models.Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(boards) == 0 {
		return boards, nil
	}
	ids := make([]int64, len(boards))
	for i, b := range boards {
		ids[i] = b.ID
	}
	members, err := s.membersByBoard(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range boards {
		boards[i].MemberIDs = members[boards[i].ID]
	}
	return boards, nil
}

// membersByBoard loads the member ids of several boards in one query.
func (s *Store) membersByBoard(ctx context.Context, q querier, boardIDs []int64) (map[int64][]int64, error) {
	rows, err := s.query(ctx, q, `SELECT board_id, user_id FROM board_members WHERE board_id IN (`+
		placeholders(len(boardIDs))+`) ORDER BY board_id, user_id`, int64Args(boardIDs)...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := make(map[int64][]int64, len(boardIDs))
	for rows.Next() {
		var boardID, userID int64
		if err := rows.Scan(&boardID, &userID); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members[boardID] = append(members[boardID], userID)
	}
	return members, rows.Err()
}

// GetBoard fetches a board together with its member ids.
func (s *Store) GetBoard(ctx context.Context, id int64) (models.Board, error) {
	return s.getBoard(ctx, s.db, id)
}

func (s *Store) getBoard(ctx context.Context, q querier, id int64) (models.Board, error) {
	b, err := scanBoard(s.queryRow(ctx, q, `SELECT `+boardColumns+` FROM boards b WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Board{}, util.NewNotExistErrorf("board not found")
	}
	if err != nil {
		return models.Board{}, fmt.Errorf("get board: %w", err)
	}
	if b.MemberIDs, err = s.memberIDs(ctx, q, id); err != nil {
		return models.Board{}, err
	}
	return b, nil
}

func (s *Store) memberIDs(ctx context.Context, q querier, boardID int64) ([]int64, error) {
	rows, err := s.query(ctx, q, `SELECT user_id FROM board_members WHERE board_id = ? ORDER BY user_id`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListBoardMembers returns the public view of every member, owner included.
func (s *Store) ListBoardMembers(ctx context.Context, boardID int64) ([]models.UserSummary, error) {
	rows, err := s.query(ctx, s.db, `SELECT u.id, u.email, u.fullname FROM board_members m
        JOIN users u ON u.id = m.user_id WHERE m.board_id = ? ORDER BY u.id`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list board members: %w", err)
	}
	defer rows.Close()

	members := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Email, &u.Fullname); err != nil {
			return nil, fmt.Errorf("scan board member: %w", err)
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

// CreateBoard inserts b. The owner is added to the member set and the
// counters are computed in the same transaction.
func (s *Store) CreateBoard(ctx context.Context, b models.Board) (models.Board, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		err := s.queryRow(ctx, tx, `INSERT INTO boards(title, owner_id, due_date, created_at, updated_at) VALUES(?, ?, ?, ?, ?) RETURNING id`,
			b.Title, b.OwnerID, nullableDate(b.DueDate), now, now).Scan(&id)
		if s.dialect.IsUniqueViolation(err) {
			return util.NewInvalidArgumentErrorf("a board with this title already exists")
		}
		if err != nil {
			return fmt.Errorf("insert board: %w", err)
		}
		if err := s.replaceMembers(ctx, tx, id, b.OwnerID, b.MemberIDs); err != nil {
			return err
		}
		return s.recountBoard(ctx, tx, id)
	})
	if err != nil {
		return models.Board{}, err
	}
	return s.GetBoard(ctx, id)
}

// UpdateBoard writes title and due date of b. When replaceMembers is set the
// member set becomes b.MemberIDs plus the owner.
func (s *Store) UpdateBoard(ctx context.Context, b models.Board, replaceMembers bool) (models.Board, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := s.exec(ctx, tx, `UPDATE boards SET title = ?, due_date = ?, updated_at = ? WHERE id = ?`,
			b.Title, nullableDate(b.DueDate), time.Now().UTC(), b.ID)
		if s.dialect.IsUniqueViolation(err) {
			return util.NewInvalidArgumentErrorf("a board with this title already exists")
		}
		if err != nil {
			return fmt.Errorf("update board: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return util.NewNotExistErrorf("board not found")
		}
		if replaceMembers {
			if err := s.replaceMembers(ctx, tx, b.ID, b.OwnerID, b.MemberIDs); err != nil {
				return err
			}
		}
		return s.recountBoard(ctx, tx, b.ID)
	})
	if err != nil {
		return models.Board{}, err
	}
	return s.GetBoard(ctx, b.ID)
}

func (s *Store) replaceMembers(ctx context.Context, tx *sql.Tx, boardID, ownerID int64, memberIDs []int64) error {
	if _, err := s.exec(ctx, tx, `DELETE FROM board_members WHERE board_id = ?`, boardID); err != nil {
		return fmt.Errorf("clear members: %w", err)
	}
	for _, userID := range uniqueIDs(append([]int64{ownerID}, memberIDs...)) {
		if _, err := s.exec(ctx, tx, `INSERT INTO board_members(board_id, user_id) VALUES(?, ?)`, boardID, userID); err != nil {
			return fmt.Errorf("insert member: %w", err)
		}
	}
	return nil
}

// DeleteBoard removes a board along with its tasks and comments.
func (s *Store) DeleteBoard(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, s.db, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return util.NewNotExistErrorf("board not found")
	}
	return nil
}
