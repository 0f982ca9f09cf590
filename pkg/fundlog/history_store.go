package fundlog

import (
	"context"
	"time"
)

// UpsertHistoryEntry sets the total value for date in a single statement.
func (c *Core) UpsertHistoryEntry(ctx context.Context, date string, value Amount) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return WrapError(ErrCodeInvalidInput, "invalid history date "+date, err)
	}
	return upsertHistory(ctx, c.db, date, value, c.timestamp())
}

// ListHistory returns all history entries in ascending date order.
func (c *Core) ListHistory(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT date, total_value FROM portfolio_history ORDER BY date ASC")
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "list history", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Date, &e.TotalValue); err != nil {
			return nil, WrapError(ErrCodeDatabase, "scan history", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "list history", err)
	}
	return entries, nil
}

func upsertHistory(ctx context.Context, db execer, date string, value Amount, now string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO portfolio_history (date, total_value, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			total_value = excluded.total_value,
			updated_at = excluded.updated_at
	`, date, value, now, now)
	if err != nil {
		return WrapError(ErrCodeDatabase, "upsert history "+date, err)
	}
	return nil
}
