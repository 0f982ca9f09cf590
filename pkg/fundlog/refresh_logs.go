package fundlog

import (
	"context"
	"database/sql"
	"strings"
)

// AddRefreshLog records the outcome of a refresh.
func (c *Core) AddRefreshLog(ctx context.Context, log RefreshLog) (int64, error) {
	result, err := c.db.ExecContext(ctx, `
		INSERT INTO refresh_logs (run_id, started_at, requested, fetched, failed, total_value, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, log.RunID, log.StartedAt, log.Requested, log.Fetched, strings.Join(log.Failed, ","), log.TotalValue, string(log.Status))
	if err != nil {
		return 0, WrapError(ErrCodeDatabase, "add refresh log", err)
	}
	return result.LastInsertId()
}

// ListRefreshLogs returns the most recent refresh logs first.
func (c *Core) ListRefreshLogs(ctx context.Context, limit int) ([]RefreshLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, run_id, started_at, requested, fetched, failed, total_value, status, created_at FROM refresh_logs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "list refresh logs", err)
	}
	defer rows.Close()

	logs := []RefreshLog{}
	for rows.Next() {
		var log RefreshLog
		var failed, createdAt sql.NullString
		var status string
		if err := rows.Scan(&log.ID, &log.RunID, &log.StartedAt, &log.Requested, &log.Fetched, &failed, &log.TotalValue, &status, &createdAt); err != nil {
			return nil, WrapError(ErrCodeDatabase, "scan refresh log", err)
		}
		log.Status = SnapshotStatus(status)
		log.Failed = []string{}
		if failed.Valid && failed.String != "" {
			log.Failed = strings.Split(failed.String, ",")
		}
		if createdAt.Valid {
			log.CreatedAt = &createdAt.String
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
