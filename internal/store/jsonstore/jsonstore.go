package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/idilsaglam/oadesk/internal/model"
	"github.com/idilsaglam/oadesk/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// Every mutation rewrites the whole file; fine for a single backend process.

const dataFileName = "oadesk.json"

type snapshot struct {
	NextID        int64                `json:"next_id"`
	Todos         []model.TodoItem     `json:"todos"`
	Announcements []model.Announcement `json:"announcements"`
}

// Store keeps the tables in memory and persists them to path after each write.
type Store struct {
	mu   sync.Mutex
	path string
	mem  *store.Memory
}

// DataPath resolves the file for dir, defaulting to the working directory.
func DataPath(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = wd
	}
	return filepath.Join(dir, dataFileName), nil
}

// Open loads path, seeding a fresh file when none exists.
func Open(path string) (*Store, error) {
	snap, err := load(path)
	if err != nil {
		return nil, err
	}
	s := &Store{path: path}
	if snap == nil {
		s.mem = store.NewMemory()
		if err := save(path, s.mem); err != nil {
			return nil, err
		}
		return s, nil
	}
	s.mem = store.NewMemoryFrom(snap.Todos, snap.Announcements, snap.NextID)
	return s, nil
}

func load(path string) (*snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return &snap, nil
}

func save(path string, mem *store.Memory) error {
	ctx := context.Background()
	todos, _ := mem.ListTodos(ctx)
	anns, _ := mem.ListAnnouncements(ctx)
	b, err := json.MarshalIndent(snapshot{
		NextID:        mem.NextID(),
		Todos:         todos,
		Announcements: anns,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// commit applies fn to a copy of the tables and only installs the copy once
// it is on disk. A failed write leaves both the file and s.mem untouched.
func (s *Store) commit(fn func(mem *store.Memory) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.mem.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := save(s.path, next); err != nil {
		return err
	}
	s.mem = next
	return nil
}

func (s *Store) current() *store.Memory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mem
}

func (s *Store) ListTodos(ctx context.Context) ([]model.TodoItem, error) {
	return s.current().ListTodos(ctx)
}

func (s *Store) CreateTodo(ctx context.Context, text string) (model.TodoItem, error) {
	var it model.TodoItem
	err := s.commit(func(mem *store.Memory) (err error) {
		it, err = mem.CreateTodo(ctx, text)
		return err
	})
	if err != nil {
		return model.TodoItem{}, err
	}
	return it, nil
}

func (s *Store) UpdateTodo(ctx context.Context, id int64, patch model.TodoPatch) (model.TodoItem, error) {
	var it model.TodoItem
	err := s.commit(func(mem *store.Memory) (err error) {
		it, err = mem.UpdateTodo(ctx, id, patch)
		return err
	})
	if err != nil {
		return model.TodoItem{}, err
	}
	return it, nil
}

func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	return s.commit(func(mem *store.Memory) error {
		return mem.DeleteTodo(ctx, id)
	})
}

func (s *Store) ListAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	return s.current().ListAnnouncements(ctx)
}

func (s *Store) Close() error { return nil }
