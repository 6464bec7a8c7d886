// Package storage persists a history of delivered queue items in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the history database under dir and initializes the
// schema.
func Open(dir string) (*DB, error) {
	return openPath(filepath.Join(dir, "queueclip.db"))
}

func openPath(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps the dashboard's reads from blocking event-loop writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pastes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,

		item TEXT NOT NULL,
		character_count INTEGER NOT NULL,

		-- queue state at delivery time
		position INTEGER NOT NULL,
		total INTEGER NOT NULL,
		loop_mode BOOLEAN NOT NULL,
		delimiter TEXT NOT NULL,

		target_window TEXT NOT NULL DEFAULT '',

		success BOOLEAN NOT NULL,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pastes_timestamp ON pastes(timestamp);
	CREATE INDEX IF NOT EXISTS idx_pastes_success ON pastes(success);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Paste is one delivery attempt.
type Paste struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Item         string    `json:"item"`
	CharCount    int       `json:"characterCount"`
	Position     int       `json:"position"`
	Total        int       `json:"total"`
	LoopMode     bool      `json:"loopMode"`
	Delimiter    string    `json:"delimiter"`
	TargetWindow string    `json:"targetWindow"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// SavePaste records a delivery attempt and fills in the row ID.
func (db *DB) SavePaste(p *Paste) error {
	query := `
		INSERT INTO pastes (
			item, character_count, position, total, loop_mode, delimiter,
			target_window, success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := db.conn.Exec(query,
		p.Item, p.CharCount, p.Position, p.Total, p.LoopMode, p.Delimiter,
		p.TargetWindow, p.Success, p.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save paste: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	p.ID = id
	return nil
}

// RecentPastes returns deliveries newest-first.
func (db *DB) RecentPastes(limit, offset int) ([]Paste, error) {
	query := `
		SELECT id, timestamp, item, character_count, position, total,
		       loop_mode, delimiter, target_window, success, error_message
		FROM pastes
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query pastes: %w", err)
	}
	defer rows.Close()

	var pastes []Paste
	for rows.Next() {
		var p Paste
		var errorMessage sql.NullString
		err := rows.Scan(
			&p.ID, &p.Timestamp, &p.Item, &p.CharCount, &p.Position, &p.Total,
			&p.LoopMode, &p.Delimiter, &p.TargetWindow, &p.Success, &errorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan paste: %w", err)
		}
		if errorMessage.Valid {
			p.ErrorMessage = errorMessage.String
		}
		pastes = append(pastes, p)
	}
	return pastes, rows.Err()
}

// Stats summarizes delivery history.
type Stats struct {
	TotalPastes int64 `json:"totalPastes"`
	TotalChars  int64 `json:"totalCharacters"`
	Failures    int64 `json:"failures"`
}

// OverallStats aggregates the last N days of history. days <= 0 means all.
func (db *DB) OverallStats(days int) (*Stats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(character_count), 0),
		       COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0)
		FROM pastes
	`
	args := []any{}
	if days > 0 {
		query += ` WHERE timestamp >= datetime('now', ?)`
		args = append(args, fmt.Sprintf("-%d days", days))
	}

	var s Stats
	if err := db.conn.QueryRow(query, args...).Scan(&s.TotalPastes, &s.TotalChars, &s.Failures); err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	return &s, nil
}

// Prune deletes history older than the given number of days.
func (db *DB) Prune(days int) (int64, error) {
	result, err := db.conn.Exec(
		`DELETE FROM pastes WHERE timestamp < datetime('now', ?)`,
		fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return result.RowsAffected()
}
