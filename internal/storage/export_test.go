package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TamperCounters overwrites cached counters so tests can exercise reconciliation.
func TamperCounters(t *testing.T, s *Store, boardID, taskID int64) {
	t.Helper()
	ctx := context.Background()
	_, err := s.exec(ctx, s.db, `UPDATE boards SET member_count = 7, ticket_count = 0 WHERE id = ?`, boardID)
	require.NoError(t, err)
	_, err = s.exec(ctx, s.db, `UPDATE tasks SET comments_count = 5 WHERE id = ?`, taskID)
	require.NoError(t, err)
}
