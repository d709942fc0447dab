// Package storage keeps boards in a SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"CanvasBoard/internal/state"
)

var ErrBoardNotFound = errors.New("board not found")

type Board struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SQLiteStore struct {
	db *sql.DB
}

// Open creates the database file (and its directory) if needed and applies the schema.
func Open(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS boards (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS elements (
			board_id TEXT NOT NULL,
			id TEXT NOT NULL,
			z_index INTEGER NOT NULL,
			type TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			width REAL NOT NULL,
			height REAL NOT NULL,
			fill TEXT NOT NULL,
			stroke TEXT NOT NULL,
			stroke_width REAL NOT NULL,
			opacity REAL NOT NULL,
			content TEXT,
			PRIMARY KEY (board_id, id),
			FOREIGN KEY (board_id) REFERENCES boards(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS connections (
			board_id TEXT NOT NULL,
			id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			source_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			source_handle TEXT NOT NULL,
			target_handle TEXT NOT NULL,
			PRIMARY KEY (board_id, id),
			FOREIGN KEY (board_id) REFERENCES boards(id) ON DELETE CASCADE
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// CreateBoard adds an empty board. Creating an id that exists is a no-op.
func (s *SQLiteStore) CreateBoard(ctx context.Context, id, name string) error {
	now := time.Now().UnixMilli()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO boards (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, name, now, now)
	if err != nil {
		return fmt.Errorf("failed to create board %s: %w", id, err)
	}
	return nil
}

// ListBoards returns boards, most recently saved first.
func (s *SQLiteStore) ListBoards(ctx context.Context) ([]Board, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM boards ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	defer rows.Close()

	var boards []Board
	for rows.Next() {
		var b Board
		var created, updated int64
		if err := rows.Scan(&b.ID, &b.Name, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		b.CreatedAt = time.UnixMilli(created)
		b.UpdatedAt = time.UnixMilli(updated)
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

func (s *SQLiteStore) DeleteBoard(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete board %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBoardNotFound
	}
	return nil
}

func (s *SQLiteStore) exists(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, id string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM boards WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBoardNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up board %s: %w", id, err)
	}
	return nil
}

// Load returns a board's elements in z-order and its connections in insertion order.
// Unreadable kind-specific content falls back to the kind defaults.
func (s *SQLiteStore) Load(ctx context.Context, boardID string) ([]state.Element, []state.Connection, error) {
	if err := s.exists(ctx, s.db, boardID); err != nil {
		return nil, nil, err
	}
	els, err := s.loadElements(ctx, boardID)
	if err != nil {
		return nil, nil, err
	}
	conns, err := s.loadConnections(ctx, boardID)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[STORE] loaded board %s: %d elements, %d connections", boardID, len(els), len(conns))
	return els, conns, nil
}

func (s *SQLiteStore) loadElements(ctx context.Context, boardID string) ([]state.Element, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, x, y, width, height, fill, stroke, stroke_width, opacity, content
		FROM elements WHERE board_id = ? ORDER BY z_index, id`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query elements: %w", err)
	}
	defer rows.Close()

	els := []state.Element{}
	for rows.Next() {
		var el state.Element
		var content sql.NullString
		if err := rows.Scan(&el.ID, &el.Kind, &el.X, &el.Y, &el.Width, &el.Height,
			&el.Fill, &el.Stroke, &el.StrokeWidth, &el.Opacity, &content); err != nil {
			return nil, fmt.Errorf("failed to scan element: %w", err)
		}
		if !el.Kind.Valid() {
			log.Printf("[STORE] skipping element %s with unknown type %q", el.ID, el.Kind)
			continue
		}
		el.ApplyContentJSON([]byte(content.String))
		els = append(els, el)
	}
	return els, rows.Err()
}

func (s *SQLiteStore) loadConnections(ctx context.Context, boardID string) ([]state.Connection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_id, target_id, source_handle, target_handle
		FROM connections WHERE board_id = ? ORDER BY seq`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer rows.Close()

	conns := []state.Connection{}
	for rows.Next() {
		var c state.Connection
		if err := rows.Scan(&c.ID, &c.SourceID, &c.TargetID, &c.SourceHandle, &c.TargetHandle); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

// Save upserts changed elements, removes deleted ones and replaces the connection
// set, all in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, boardID string, changed []state.Placed, deleted []string, conns []state.Connection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	if err := s.exists(ctx, tx, boardID); err != nil {
		return err
	}

	upsert, err := tx.PrepareContext(ctx, `
		INSERT INTO elements (board_id, id, z_index, type, x, y, width, height, fill, stroke, stroke_width, opacity, content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (board_id, id) DO UPDATE SET
			z_index = excluded.z_index, type = excluded.type,
			x = excluded.x, y = excluded.y, width = excluded.width, height = excluded.height,
			fill = excluded.fill, stroke = excluded.stroke, stroke_width = excluded.stroke_width,
			opacity = excluded.opacity, content = excluded.content`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer upsert.Close()

	for _, p := range changed {
		el := p.Element
		content, err := el.ContentJSON()
		if err != nil {
			return fmt.Errorf("failed to encode element %s: %w", el.ID, err)
		}
		if _, err := upsert.ExecContext(ctx, boardID, el.ID, p.Z, string(el.Kind),
			el.X, el.Y, el.Width, el.Height, el.Fill, el.Stroke, el.StrokeWidth, el.Opacity,
			string(content)); err != nil {
			return fmt.Errorf("failed to save element %s: %w", el.ID, err)
		}
	}

	for _, id := range deleted {
		if _, err := tx.ExecContext(ctx, `DELETE FROM elements WHERE board_id = ? AND id = ?`, boardID, id); err != nil {
			return fmt.Errorf("failed to delete element %s: %w", id, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM connections WHERE board_id = ?`, boardID); err != nil {
		return fmt.Errorf("failed to clear connections: %w", err)
	}
	for i, c := range conns {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO connections (board_id, id, seq, source_id, target_id, source_handle, target_handle)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			boardID, c.ID, i, c.SourceID, c.TargetID, string(c.SourceHandle), string(c.TargetHandle)); err != nil {
			return fmt.Errorf("failed to save connection %s: %w", c.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE boards SET updated_at = ? WHERE id = ?`,
		time.Now().UnixMilli(), boardID); err != nil {
		return fmt.Errorf("failed to touch board: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}
	log.Printf("[STORE] saved board %s: %d changed, %d deleted, %d connections",
		boardID, len(changed), len(deleted), len(conns))
	return nil
}
