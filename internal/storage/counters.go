package storage

import (
	"context"
	"fmt"
	"log/slog"

	"taskboard/internal/models"
)

// Counter expressions correlated on boards.id and tasks.id. The same
// expressions serve the per-row recount and the full reconciliation.
var (
	memberCountExpr   = `(SELECT COUNT(*) FROM board_members m WHERE m.board_id = boards.id)`
	ticketCountExpr   = `(SELECT COUNT(*) FROM tasks t WHERE t.board_id = boards.id)`
	toDoCountExpr     = `(SELECT COUNT(*) FROM tasks t WHERE t.board_id = boards.id AND t.status = '` + string(models.StatusToDo) + `')`
	highPrioCountExpr = `(SELECT COUNT(*) FROM tasks t WHERE t.board_id = boards.id AND t.priority = '` + string(models.PriorityHigh) + `')`
	commentsCountExpr = `(SELECT COUNT(*) FROM comments c WHERE c.task_id = tasks.id)`

	boardCountersSet = `member_count = ` + memberCountExpr +
		`, ticket_count = ` + ticketCountExpr +
		`, tasks_to_do_count = ` + toDoCountExpr +
		`, tasks_high_prio_count = ` + highPrioCountExpr

	boardCountersDrift = `member_count <> ` + memberCountExpr +
		` OR ticket_count <> ` + ticketCountExpr +
		` OR tasks_to_do_count <> ` + toDoCountExpr +
		` OR tasks_high_prio_count <> ` + highPrioCountExpr
)

// recountBoard recomputes every cached counter of one board. It is idempotent
// and runs inside the transaction of the mutation it follows.
func (s *Store) recountBoard(ctx context.Context, q querier, boardID int64) error {
	if _, err := s.exec(ctx, q, `UPDATE boards SET `+boardCountersSet+` WHERE id = ?`, boardID); err != nil {
		return fmt.Errorf("recount board %d: %w", boardID, err)
	}
	return nil
}

// recountTask recomputes the comment counter of one task.
func (s *Store) recountTask(ctx context.Context, q querier, taskID int64) error {
	if _, err := s.exec(ctx, q, `UPDATE tasks SET comments_count = `+commentsCountExpr+` WHERE id = ?`, taskID); err != nil {
		return fmt.Errorf("recount task %d: %w", taskID, err)
	}
	return nil
}

// ReconcileStats reports how many rows carried stale counters.
type ReconcileStats struct {
	Boards int64
	Tasks  int64
}

// ReconcileCounters repairs the counters of every board and task whose cached
// values drifted from the underlying rows.
func (s *Store) ReconcileCounters(ctx context.Context) (ReconcileStats, error) {
	var stats ReconcileStats
	res, err := s.exec(ctx, s.db, `UPDATE boards SET `+boardCountersSet+` WHERE `+boardCountersDrift)
	if err != nil {
		return stats, fmt.Errorf("reconcile boards: %w", err)
	}
	if stats.Boards, err = res.RowsAffected(); err != nil {
		return stats, err
	}

	res, err = s.exec(ctx, s.db, `UPDATE tasks SET comments_count = `+commentsCountExpr+` WHERE comments_count <> `+commentsCountExpr)
	if err != nil {
		return stats, fmt.Errorf("reconcile tasks: %w", err)
	}
	if stats.Tasks, err = res.RowsAffected(); err != nil {
		return stats, err
	}

	if stats.Boards > 0 || stats.Tasks > 0 {
		s.logger.Warn("repaired stale counters", slog.Int64("boards", stats.Boards), slog.Int64("tasks", stats.Tasks))
	}
	return stats, nil
}
