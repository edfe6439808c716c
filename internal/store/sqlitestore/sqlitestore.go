// Package sqlitestore is a SQLite-backed store.Store.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/idilsaglam/oadesk/internal/apierr"
	"github.com/idilsaglam/oadesk/internal/model"
	"github.com/idilsaglam/oadesk/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS todos (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	text      TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS announcements (
	id      INTEGER PRIMARY KEY,
	title   TEXT NOT NULL,
	content TEXT NOT NULL,
	date    TEXT NOT NULL,
	author  TEXT NOT NULL
);
`

// Store wraps a *sql.DB. AUTOINCREMENT keeps ids from being reused after delete.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and seeds empty tables.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writes.
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`).Scan(&n); err != nil {
		return fmt.Errorf("count todos: %w", err)
	}
	var seq int
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_sequence WHERE name = 'todos'`).Scan(&seq)
	if n == 0 && seq == 0 {
		for _, t := range store.SeedTodos() {
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO todos (id, text, completed) VALUES (?, ?, ?)`,
				t.ID, t.Text, t.Completed); err != nil {
				return fmt.Errorf("seed todos: %w", err)
			}
		}
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM announcements`).Scan(&n); err != nil {
		return fmt.Errorf("count announcements: %w", err)
	}
	if n == 0 {
		for _, a := range store.SeedAnnouncements() {
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO announcements (id, title, content, date, author) VALUES (?, ?, ?, ?, ?)`,
				a.ID, a.Title, a.Content, a.Date, a.Author); err != nil {
				return fmt.Errorf("seed announcements: %w", err)
			}
		}
	}
	return nil
}

func (s *Store) ListTodos(ctx context.Context) ([]model.TodoItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, completed FROM todos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()
	out := []model.TodoItem{}
	for rows.Next() {
		var it model.TodoItem
		if err := rows.Scan(&it.ID, &it.Text, &it.Completed); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) CreateTodo(ctx context.Context, text string) (model.TodoItem, error) {
	if err := store.ValidateText(text); err != nil {
		return model.TodoItem{}, err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO todos (text, completed) VALUES (?, 0)`, text)
	if err != nil {
		return model.TodoItem{}, fmt.Errorf("insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.TodoItem{}, fmt.Errorf("insert todo: %w", err)
	}
	return model.TodoItem{ID: id, Text: text}, nil
}

func (s *Store) getTodo(ctx context.Context, id int64) (model.TodoItem, error) {
	var it model.TodoItem
	err := s.db.QueryRowContext(ctx, `SELECT id, text, completed FROM todos WHERE id = ?`, id).
		Scan(&it.ID, &it.Text, &it.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return it, apierr.NewNotFoundError("todo", id)
	}
	if err != nil {
		return it, fmt.Errorf("get todo: %w", err)
	}
	return it, nil
}

func (s *Store) UpdateTodo(ctx context.Context, id int64, patch model.TodoPatch) (model.TodoItem, error) {
	if err := store.ValidatePatch(patch); err != nil {
		return model.TodoItem{}, err
	}
	cur, err := s.getTodo(ctx, id)
	if err != nil {
		return cur, err
	}
	next := patch.Apply(cur)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE todos SET text = ?, completed = ? WHERE id = ?`,
		next.Text, next.Completed, id); err != nil {
		return cur, fmt.Errorf("update todo: %w", err)
	}
	return next, nil
}

func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}

func (s *Store) ListAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, date, author FROM announcements ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()
	out := []model.Announcement{}
	for rows.Next() {
		var a model.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Date, &a.Author); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Close() error { return s.db.Close() }
