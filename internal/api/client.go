// Package api is the data access layer used by every view.
//
// Callers depend on Client only, so the in-process MockClient and the
// network-backed HTTPClient are interchangeable.
package api

import (
	"context"

	"github.com/idilsaglam/oadesk/internal/model"
)

// Client exposes the operations behind the views. Every call may block.
type Client interface {
	ListTodos(ctx context.Context) ([]model.TodoItem, error)
	CreateTodo(ctx context.Context, text string) (model.TodoItem, error)
	UpdateTodo(ctx context.Context, id int64, patch model.TodoPatch) (model.TodoItem, error)
	DeleteTodo(ctx context.Context, id int64) error
	ListAnnouncements(ctx context.Context) ([]model.Announcement, error)
	// SendChatMessage returns exactly one reply. history is the conversation
	// so far; the backend keeps no state between calls.
	SendChatMessage(ctx context.Context, text string, history []model.ChatMessage) (string, error)
}

// Op names an operation for latency tables and error messages.
type Op string

const (
	OpListTodos         Op = "list todos"
	OpCreateTodo        Op = "create todo"
	OpUpdateTodo        Op = "update todo"
	OpDeleteTodo        Op = "delete todo"
	OpListAnnouncements Op = "list announcements"
	OpSendChat          Op = "send chat message"
)
