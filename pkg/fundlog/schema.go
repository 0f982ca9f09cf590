package fundlog

import "database/sql"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS holdings (
		code TEXT PRIMARY KEY,
		quantity REAL NOT NULL CHECK(quantity > 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS portfolio_history (
		date TEXT PRIMARY KEY,
		total_value REAL NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		started_at TEXT NOT NULL,
		requested INTEGER NOT NULL DEFAULT 0,
		fetched INTEGER NOT NULL DEFAULT 0,
		failed TEXT,
		total_value REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_logs_started_at ON refresh_logs(started_at)`,
}

func initDatabase(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range schemaStatements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}
