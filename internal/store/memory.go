package store

import (
	"context"
	"sync"

	"github.com/idilsaglam/oadesk/internal/apierr"
	"github.com/idilsaglam/oadesk/internal/model"
)

// Memory is a mutex-guarded in-memory Store.
type Memory struct {
	mu            sync.Mutex
	todos         []model.TodoItem
	announcements []model.Announcement
	nextID        int64
}

// NewMemory returns a Memory seeded with the default tables.
func NewMemory() *Memory {
	return NewMemoryFrom(SeedTodos(), SeedAnnouncements(), 0)
}

// NewMemoryFrom builds a Memory from explicit tables. nextID below the
// highest existing id is raised so ids are never reused.
func NewMemoryFrom(todos []model.TodoItem, anns []model.Announcement, nextID int64) *Memory {
	for _, t := range todos {
		if t.ID >= nextID {
			nextID = t.ID + 1
		}
	}
	if nextID < 1 {
		nextID = 1
	}
	return &Memory{
		todos:         append([]model.TodoItem(nil), todos...),
		announcements: append([]model.Announcement(nil), anns...),
		nextID:        nextID,
	}
}

func (m *Memory) ListTodos(ctx context.Context) ([]model.TodoItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.TodoItem{}, m.todos...), nil
}

func (m *Memory) CreateTodo(ctx context.Context, text string) (model.TodoItem, error) {
	if err := ValidateText(text); err != nil {
		return model.TodoItem{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	it := model.TodoItem{ID: m.nextID, Text: text}
	m.nextID++
	m.todos = append(m.todos, it)
	return it, nil
}

func (m *Memory) UpdateTodo(ctx context.Context, id int64, patch model.TodoPatch) (model.TodoItem, error) {
	if err := ValidatePatch(patch); err != nil {
		return model.TodoItem{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.todos {
		if t.ID == id {
			m.todos[i] = patch.Apply(t)
			return m.todos[i], nil
		}
	}
	return model.TodoItem{}, apierr.NewNotFoundError("todo", id)
}

func (m *Memory) DeleteTodo(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.todos {
		if t.ID == id {
			m.todos = append(m.todos[:i], m.todos[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) ListAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Announcement{}, m.announcements...), nil
}

// Clone returns an independent copy of the tables.
func (m *Memory) Clone() *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	return NewMemoryFrom(m.todos, m.announcements, m.nextID)
}

// NextID reports the id the next CreateTodo will assign.
func (m *Memory) NextID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextID
}

func (m *Memory) Close() error { return nil }
