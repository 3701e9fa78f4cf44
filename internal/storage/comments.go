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

const commentSelect = `SELECT c.id, c.task_id, c.author_id, u.fullname, c.content, c.created_at
    FROM comments c JOIN users u ON u.id = c.author_id`

func scanComment(row interface{ Scan(...any) error }) (models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Author, &c.Content, &c.CreatedAt)
	return c, err
}

// ListComments returns the comments of a task, oldest first.
func (s *Store) ListComments(ctx context.Context, taskID int64) ([]models.Comment, error) {
	rows, err := s.query(ctx, s.db, commentSelect+` WHERE c.task_id = ? ORDER BY c.created_at, c.id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// GetComment fetches a comment that belongs to taskID.
func (s *Store) GetComment(ctx context.Context, taskID, commentID int64) (models.Comment, error) {
	c, err := scanComment(s.queryRow(ctx, s.db, commentSelect+` WHERE c.id = ? AND c.task_id = ?`, commentID, taskID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Comment{}, util.NewNotExistErrorf("comment not found")
	}
	if err != nil {
		return models.Comment{}, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

// AddComment appends a comment and refreshes the comment counter of the task.
func (s *Store) AddComment(ctx context.Context, taskID, authorID int64, content string) (models.Comment, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := s.queryRow(ctx, tx, `INSERT INTO comments(task_id, author_id, content, created_at) VALUES(?, ?, ?, ?) RETURNING id`,
			taskID, authorID, content, time.Now().UTC()).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		return s.recountTask(ctx, tx, taskID)
	})
	if err != nil {
		return models.Comment{}, err
	}
	return s.GetComment(ctx, taskID, id)
}

// DeleteComment removes a comment of taskID and refreshes the comment counter.
func (s *Store) DeleteComment(ctx context.Context, taskID, commentID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := s.exec(ctx, tx, `DELETE FROM comments WHERE id = ? AND task_id = ?`, commentID, taskID)
		if err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return util.NewNotExistErrorf("comment not found")
		}
		return s.recountTask(ctx, tx, taskID)
	})
}
