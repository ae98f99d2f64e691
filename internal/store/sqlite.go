package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/scbrown/cheeky/internal/model"

	_ "modernc.org/sqlite"
)

const schemaVersion = 2

// SQLiteStore implements Store using a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at dbPath.
// It auto-creates the parent directory (e.g. ~/.cheeky/) and runs
// schema migrations to ensure the database is up to date.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection for WAL mode simplicity.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// migrate runs schema migrations up to schemaVersion.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}

	var ver int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&ver)
	if err == sql.ErrNoRows {
		ver = 0
	} else if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if ver > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", ver, schemaVersion)
	}

	if ver < 1 {
		if err := s.exec("migrate v1",
			`CREATE TABLE IF NOT EXISTS history (
				id        TEXT PRIMARY KEY,
				input     TEXT NOT NULL,
				command   TEXT,
				flags     TEXT,
				found     INTEGER NOT NULL DEFAULT 0,
				timestamp TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_history_command ON history(command)`,
			`CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp)`,
			`INSERT OR REPLACE INTO schema_version (version) VALUES (1)`,
		); err != nil {
			return err
		}
	}

	if ver < 2 {
		// Per-flag rows back the top-flags ranking; source tells CLI and
		// HTTP requests apart.
		if err := s.exec("migrate v2",
			`ALTER TABLE history ADD COLUMN source TEXT`,
			`CREATE TABLE IF NOT EXISTS history_flags (
				history_id TEXT NOT NULL REFERENCES history(id) ON DELETE CASCADE,
				flag       TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_history_flags_flag ON history_flags(flag)`,
			`CREATE INDEX IF NOT EXISTS idx_history_flags_history_id ON history_flags(history_id)`,
			`UPDATE schema_version SET version = 2`,
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) exec(step string, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("%s: %w", step, err)
		}
	}
	return nil
}

// Record persists a single explanation request.
func (s *SQLiteStore) Record(ctx context.Context, e model.HistoryEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	flags, err := json.Marshal(e.Flags)
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}
	if e.Flags == nil {
		flags = nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO history (id, input, command, flags, found, source, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.Input,
		nullableString(e.Command),
		nullableString(string(flags)),
		boolToInt(e.Found),
		nullableString(e.Source),
		e.Timestamp.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	for _, f := range e.Flags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO history_flags (history_id, flag) VALUES (?, ?)`, e.ID, f); err != nil {
			return fmt.Errorf("insert history flag: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// List returns history entries matching the given filter options.
func (s *SQLiteStore) List(ctx context.Context, opts ListOpts) ([]model.HistoryEntry, error) {
	query := "SELECT id, input, command, flags, found, source, timestamp FROM history WHERE 1=1"
	var args []any

	if !opts.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, opts.Since.UTC().Format(time.RFC3339Nano))
	}
	if opts.Command != "" {
		query += " AND command = ?"
		args = append(args, opts.Command)
	}
	if opts.Source != "" {
		query += " AND source = ?"
		args = append(args, opts.Source)
	}
	if opts.MissesOnly {
		query += " AND found = 0"
	}
	query += " ORDER BY timestamp DESC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		var command, flags, source sql.NullString
		var found int
		var ts string
		if err := rows.Scan(&e.ID, &e.Input, &command, &flags, &found, &source, &ts); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Command = command.String
		e.Source = source.String
		e.Found = found != 0
		if flags.Valid && flags.String != "" {
			if err := json.Unmarshal([]byte(flags.String), &e.Flags); err != nil {
				return nil, fmt.Errorf("decode flags of %s: %w", e.ID, err)
			}
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		e.Timestamp = t
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats returns summary statistics about recorded history.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(found), 0) FROM history").Scan(&st.Total, &st.Found); err != nil {
		return st, fmt.Errorf("count history: %w", err)
	}
	st.NotFound = st.Total - st.Found

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT command) FROM history WHERE found = 1").Scan(&st.UniqueCommands); err != nil {
		return st, fmt.Errorf("count commands: %w", err)
	}

	rankings := []struct {
		what  string
		query string
		dst   *[]NameCount
	}{
		{"top commands",
			"SELECT command, COUNT(*) AS cnt FROM history WHERE found = 1 GROUP BY command ORDER BY cnt DESC, command LIMIT ?",
			&st.TopCommands},
		{"top flags",
			"SELECT flag, COUNT(*) AS cnt FROM history_flags GROUP BY flag ORDER BY cnt DESC, flag LIMIT ?",
			&st.TopFlags},
		{"top misses",
			"SELECT input, COUNT(*) AS cnt FROM history WHERE found = 0 GROUP BY input ORDER BY cnt DESC, input LIMIT ?",
			&st.TopMisses},
	}
	for _, r := range rankings {
		counts, err := s.nameCounts(ctx, r.query, TopN)
		if err != nil {
			return st, fmt.Errorf("%s: %w", r.what, err)
		}
		*r.dst = counts
	}

	if st.Total > 0 {
		var earliest, latest string
		if err := s.db.QueryRowContext(ctx,
			"SELECT MIN(timestamp), MAX(timestamp) FROM history").Scan(&earliest, &latest); err != nil {
			return st, fmt.Errorf("date range: %w", err)
		}
		st.Earliest, _ = time.Parse(time.RFC3339Nano, earliest)
		st.Latest, _ = time.Parse(time.RFC3339Nano, latest)
	}

	now := time.Now().UTC()
	for _, w := range []struct {
		dur time.Duration
		dst *int
	}{
		{24 * time.Hour, &st.Last24h},
		{7 * 24 * time.Hour, &st.Last7d},
		{30 * 24 * time.Hour, &st.Last30d},
	} {
		since := now.Add(-w.dur).Format(time.RFC3339Nano)
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM history WHERE timestamp >= ?", since).Scan(w.dst); err != nil {
			return st, fmt.Errorf("count since %v: %w", w.dur, err)
		}
	}

	return st, nil
}

func (s *SQLiteStore) nameCounts(ctx context.Context, query string, args ...any) ([]NameCount, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NameCount
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}

// Prune deletes entries recorded before the given time.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int, error) {
	cutoff := before.UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM history_flags WHERE history_id IN (SELECT id FROM history WHERE timestamp < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("prune flags: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM history WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return int(n), nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullableString returns nil for empty strings so they are stored as NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
