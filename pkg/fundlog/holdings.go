package fundlog

import (
	"context"
	"database/sql"
	"time"
)

// Store is the persistence surface the pipeline depends on. *Core
// implements it on SQLite.
type Store interface {
	HistoryStore
	ListHoldings(ctx context.Context) ([]Holding, error)
	ReplaceAllHoldings(ctx context.Context, inputs []HoldingInput) (int, error)
}

var _ Store = (*Core)(nil)

// ListHoldings returns the configured holdings in the order they were added.
func (c *Core) ListHoldings(ctx context.Context) ([]Holding, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT code, quantity, created_at, updated_at FROM holdings ORDER BY rowid")
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "list holdings", err)
	}
	defer rows.Close()

	holdings := []Holding{}
	for rows.Next() {
		var h Holding
		var createdAt, updatedAt sql.NullString
		if err := rows.Scan(&h.Code, &h.Quantity, &createdAt, &updatedAt); err != nil {
			return nil, WrapError(ErrCodeDatabase, "scan holding", err)
		}
		h.CreatedAt = parseStoredTime(createdAt)
		h.UpdatedAt = parseStoredTime(updatedAt)
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "list holdings", err)
	}
	return holdings, nil
}

// ReplaceAllHoldings clears the holdings table and stores the valid inputs.
// Inputs with a blank code or a non-positive quantity are dropped without
// error; a repeated code keeps its last quantity. It returns the number of
// holdings stored.
func (c *Core) ReplaceAllHoldings(ctx context.Context, inputs []HoldingInput) (int, error) {
	now := c.timestamp()
	stored := map[string]struct{}{}
	dropped := 0
	err := c.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM holdings"); err != nil {
			return WrapError(ErrCodeDatabase, "clear holdings", err)
		}
		for _, in := range inputs {
			h, ok := NormalizeHolding(in)
			if !ok {
				dropped++
				continue
			}
			if err := upsertHolding(ctx, tx, h, now); err != nil {
				return err
			}
			stored[h.Code] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if dropped > 0 {
		c.logger.Info("invalid holdings dropped", "dropped", dropped, "stored", len(stored))
	}
	return len(stored), nil
}

// UpsertHolding adds a holding or updates the quantity of an existing one.
func (c *Core) UpsertHolding(ctx context.Context, code string, quantity float64) error {
	h, err := validateHolding(code, quantity)
	if err != nil {
		return err
	}
	return upsertHolding(ctx, c.db, h, c.timestamp())
}

// DeleteHolding removes a holding. It reports whether a row was deleted.
func (c *Core) DeleteHolding(ctx context.Context, code string) (bool, error) {
	code = normalizeCode(code)
	if code == "" {
		return false, NewError(ErrCodeInvalidInput, "code is required")
	}
	result, err := c.db.ExecContext(ctx, "DELETE FROM holdings WHERE code = ?", code)
	if err != nil {
		return false, WrapError(ErrCodeDatabase, "delete holding", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, WrapError(ErrCodeDatabase, "delete holding", err)
	}
	return n > 0, nil
}

func upsertHolding(ctx context.Context, db execer, h Holding, now string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO holdings (code, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			quantity = excluded.quantity,
			updated_at = excluded.updated_at
	`, h.Code, h.Quantity, now, now)
	if err != nil {
		return WrapError(ErrCodeDatabase, "save holding "+h.Code, err)
	}
	return nil
}

func (c *Core) timestamp() string {
	return c.clock.Now().UTC().Format(time.RFC3339)
}

// parseStoredTime returns nil for NULL or unparseable columns.
func parseStoredTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v.String); err == nil {
			return &t
		}
	}
	return nil
}
