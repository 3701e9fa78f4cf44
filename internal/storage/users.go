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

const userColumns = `id, email, fullname, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Fullname, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// CreateUser inserts a new account. Email must already be normalised.
func (s *Store) CreateUser(ctx context.Context, email, fullname, passwordHash string) (models.User, error) {
	var id int64
	err := s.queryRow(ctx, s.db, `INSERT INTO users(email, fullname, password_hash, created_at) VALUES(?, ?, ?, ?) RETURNING id`,
		email, fullname, passwordHash, time.Now().UTC()).Scan(&id)
	if s.dialect.IsUniqueViolation(err) {
		return models.User{}, util.NewAlreadyExistErrorf("this email is already in use")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUser(ctx, id)
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(s.queryRow(ctx, s.db, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, util.NewNotExistErrorf("user not found")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail fetches a user by normalised email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(s.queryRow(ctx, s.db, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, util.NewNotExistErrorf("no user with this email")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// MissingUsers returns the ids from ids that do not belong to any user.
// Non-positive ids are always reported as missing.
func (s *Store) MissingUsers(ctx context.Context, ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		if id <= 0 {
			missing = append(missing, id)
		}
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return missing, nil
	}
	rows, err := s.query(ctx, s.db, `SELECT id FROM users WHERE id IN (`+placeholders(len(ids))+`)`, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("check users: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]struct{}, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
