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

const taskSelect = `SELECT t.id, t.board_id, t.title, t.description, t.status, t.priority,
        a.id, a.email, a.fullname, r.id, r.email, r.fullname, t.due_date, t.comments_count
    FROM tasks t
    LEFT JOIN users a ON a.id = t.assignee_id
    LEFT JOIN users r ON r.id = t.reviewer_id`

type nullableUser struct {
	id       sql.NullInt64
	email    sql.NullString
	fullname sql.NullString
}

func (n nullableUser) summary() *models.UserSummary {
	if !n.id.Valid {
		return nil
	}
	return &models.UserSummary{ID: n.id.Int64, Email: n.email.String, Fullname: n.fullname.String}
}

func scanTask(row interface{ Scan(...any) error }) (models.Task, error) {
	var (
		t        models.Task
		assignee nullableUser
		reviewer nullableUser
		due      sql.Null[models.Date]
	)
	err := row.Scan(&t.ID, &t.BoardID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&assignee.id, &assignee.email, &assignee.fullname,
		&reviewer.id, &reviewer.email, &reviewer.fullname,
		&due, &t.CommentsCount)
	if err != nil {
		return models.Task{}, err
	}
	t.Assignee = assignee.summary()
	t.Reviewer = reviewer.summary()
	if due.Valid {
		t.DueDate = &due.V
	}
	return t, nil
}

func (s *Store) listTasks(ctx context.Context, where string, args ...any) ([]models.Task, error) {
	rows, err := s.query(ctx, s.db, taskSelect+` WHERE `+where+` ORDER BY t.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ListTasksByBoard returns the tasks of a board ordered by id.
func (s *Store) ListTasksByBoard(ctx context.Context, boardID int64) ([]models.Task, error) {
	return s.listTasks(ctx, `t.board_id = ?`, boardID)
}

// ListTasksByAssignee returns the tasks assigned to userID.
func (s *Store) ListTasksByAssignee(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.listTasks(ctx, `t.assignee_id = ?`, userID)
}

// ListTasksByReviewer returns the tasks userID reviews.
func (s *Store) ListTasksByReviewer(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.listTasks(ctx, `t.reviewer_id = ?`, userID)
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	return s.getTask(ctx, s.db, id)
}

func (s *Store) getTask(ctx context.Context, q querier, id int64) (models.Task, error) {
	t, err := scanTask(s.queryRow(ctx, q, taskSelect+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, util.NewNotExistErrorf("task not found")
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// CreateTask inserts a validated task and refreshes the counters of its board.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		err := s.queryRow(ctx, tx, `INSERT INTO tasks(board_id, title, description, status, priority, assignee_id, reviewer_id, due_date, created_at, updated_at)
            VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			t.BoardID, t.Title, t.Description, string(t.Status), string(t.Priority),
			nullableID(t.AssigneeID()), nullableID(t.ReviewerID()), nullableDate(t.DueDate), now, now).Scan(&id)
		if s.dialect.IsUniqueViolation(err) {
			return util.NewInvalidArgumentErrorf("a task with this title already exists")
		}
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		return s.recountBoard(ctx, tx, t.BoardID)
	})
	if err != nil {
		return models.Task{}, err
	}
	return s.GetTask(ctx, id)
}

// UpdateTask overwrites the editable fields of t and refreshes the counters of
// its board.
func (s *Store) UpdateTask(ctx context.Context, t models.Task) (models.Task, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := s.exec(ctx, tx, `UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?,
            assignee_id = ?, reviewer_id = ?, due_date = ?, updated_at = ? WHERE id = ?`,
			t.Title, t.Description, string(t.Status), string(t.Priority),
			nullableID(t.AssigneeID()), nullableID(t.ReviewerID()), nullableDate(t.DueDate), time.Now().UTC(), t.ID)
		if s.dialect.IsUniqueViolation(err) {
			return util.NewInvalidArgumentErrorf("a task with this title already exists")
		}
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return util.NewNotExistErrorf("task not found")
		}
		return s.recountBoard(ctx, tx, t.BoardID)
	})
	if err != nil {
		return models.Task{}, err
	}
	return s.GetTask(ctx, t.ID)
}

// DeleteTask removes a task with its comments and refreshes the counters of
// its board.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var boardID int64
		err := s.queryRow(ctx, tx, `SELECT board_id FROM tasks WHERE id = ?`, id).Scan(&boardID)
		if errors.Is(err, sql.ErrNoRows) {
			return util.NewNotExistErrorf("task not found")
		}
		if err != nil {
			return fmt.Errorf("get task board: %w", err)
		}
		if _, err := s.exec(ctx, tx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return s.recountBoard(ctx, tx, boardID)
	})
}
