package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	d := Dialect{}
	assert.Equal(t, "SELECT 1", d.Rebind("SELECT 1"))
	assert.Equal(t,
		"UPDATE tasks SET title = $1, status = $2 WHERE id = $3",
		d.Rebind("UPDATE tasks SET title = ?, status = ? WHERE id = ?"))
	assert.Equal(t, "SELECT id FROM users WHERE id IN ($1, $2)", d.Rebind("SELECT id FROM users WHERE id IN (?, ?)"))
}

func TestIsUniqueViolation(t *testing.T) {
	d := Dialect{}
	assert.True(t, d.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, d.IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, d.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, d.IsUniqueViolation(errors.New("boom")))
	assert.False(t, d.IsUniqueViolation(nil))
}
