// Package store holds the backing tables behind the data access layer.
//
// The same Store serves the in-process mock client and the reference HTTP
// backend, so both observe identical validation and not-found behaviour.
package store

import (
	"context"
	"strings"

	"github.com/idilsaglam/oadesk/internal/apierr"
	"github.com/idilsaglam/oadesk/internal/model"
)

// Store is the persistence contract for todos and announcements.
type Store interface {
	ListTodos(ctx context.Context) ([]model.TodoItem, error)
	CreateTodo(ctx context.Context, text string) (model.TodoItem, error)
	UpdateTodo(ctx context.Context, id int64, patch model.TodoPatch) (model.TodoItem, error)
	// DeleteTodo succeeds whether or not id exists.
	DeleteTodo(ctx context.Context, id int64) error
	ListAnnouncements(ctx context.Context) ([]model.Announcement, error)
	Close() error
}

// ValidateText rejects empty or whitespace-only todo text.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apierr.NewValidationError("text", "must not be empty")
	}
	return nil
}

// ValidatePatch applies ValidateText to a patch that sets text.
func ValidatePatch(p model.TodoPatch) error {
	if p.Text != nil {
		return ValidateText(*p.Text)
	}
	return nil
}
