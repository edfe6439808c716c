package apierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewFetchError("list todos", 0, cause)

	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "list todos: connection refused", err.Error())

	withStatus := NewFetchError("list todos", 502, nil)
	assert.Equal(t, "list todos: unexpected status 502", withStatus.Error())
	assert.NotErrorIs(t, withStatus, ErrNotFound)
}

func TestWrappedKindsStillMatch(t *testing.T) {
	err := fmt.Errorf("update todo: %w", NewNotFoundError("todo", 7))
	assert.ErrorIs(t, err, ErrNotFound)

	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, int64(7), nf.ID)

	v := fmt.Errorf("create: %w", NewValidationError("text", "must not be empty"))
	assert.ErrorIs(t, v, ErrValidation)
	assert.NotErrorIs(t, v, ErrFetch)
	assert.Equal(t, "validation failed: text must not be empty", errors.Unwrap(v).Error())
}
