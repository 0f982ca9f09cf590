package fundlog

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Options controls Core initialization.
type Options struct {
	DBPath       string
	Logger       *slog.Logger
	SourceURL    string
	HTTPTimeout  time.Duration
	HTTPClient   HTTPDoer
	FetchWorkers int
	// Location decides the calendar day of history entries. Ignored when
	// Clock is set.
	Location *time.Location
	Clock    Clock
	// Fetcher replaces the TEFAS fetcher entirely.
	Fetcher QuoteFetcher
}

// Core owns the database handle and the quote pipeline. Create it with Open
// or OpenWithOptions and release it with Close.
type Core struct {
	db      *sql.DB
	logger  *slog.Logger
	fetcher QuoteFetcher
	workers int
	clock   Clock
	ledger  *Ledger
	dbPath  string
}

// Open initializes a Core using the provided database path.
func Open(dbPath string) (*Core, error) {
	return OpenWithOptions(Options{DBPath: dbPath})
}

// OpenWithOptions initializes a Core using the provided options.
func OpenWithOptions(opts Options) (*Core, error) {
	if opts.DBPath == "" {
		return nil, errors.New("db path is required")
	}
	cleanPath := filepath.Clean(opts.DBPath)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite performs best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Warn("pragma busy_timeout failed", "err", err)
	}

	if err := initDatabase(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = newTefasFetcher(tefasOptions{
			Logger:     logger,
			BaseURL:    opts.SourceURL,
			Timeout:    defaultDuration(opts.HTTPTimeout, 10*time.Second),
			HTTPClient: opts.HTTPClient,
		})
	}
	clock := opts.Clock
	if clock == nil {
		clock = NewClock(opts.Location)
	}

	c := &Core{
		db:      db,
		logger:  logger,
		fetcher: fetcher,
		workers: defaultInt(opts.FetchWorkers, DefaultFetchWorkers),
		clock:   clock,
		dbPath:  cleanPath,
	}
	c.ledger = NewLedger(c, clock)
	return c, nil
}

// Close releases database resources.
func (c *Core) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DBPath returns the underlying database path.
func (c *Core) DBPath() string {
	return c.dbPath
}

// Ledger returns the history ledger backed by this Core.
func (c *Core) Ledger() *Ledger {
	return c.ledger
}

func defaultDuration(v time.Duration, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}

func defaultInt(v int, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
