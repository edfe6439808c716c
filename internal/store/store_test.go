package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/idilsaglam/oadesk/internal/apierr"
	"github.com/idilsaglam/oadesk/internal/model"
	"github.com/idilsaglam/oadesk/internal/store"
	"github.com/idilsaglam/oadesk/internal/store/jsonstore"
	"github.com/idilsaglam/oadesk/internal/store/sqlitestore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// backends runs fn against every Store implementation.
func backends(t *testing.T, fn func(t *testing.T, s store.Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, store.NewMemory())
	})
	t.Run("json", func(t *testing.T) {
		s, err := jsonstore.Open(filepath.Join(t.TempDir(), "oadesk.json"))
		require.NoError(t, err)
		fn(t, s)
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := sqlitestore.Open(context.Background(), filepath.Join(t.TempDir(), "oadesk.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
}

func TestSeededTables(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		todos, err := s.ListTodos(ctx)
		require.NoError(t, err)
		if diff := cmp.Diff(store.SeedTodos(), todos); diff != "" {
			t.Fatalf("seed todos mismatch (-want +got):\n%s", diff)
		}
		anns, err := s.ListAnnouncements(ctx)
		require.NoError(t, err)
		if diff := cmp.Diff(store.SeedAnnouncements(), anns); diff != "" {
			t.Fatalf("seed announcements mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestCreateAssignsFreshIDs(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seen := map[int64]bool{}
		for _, it := range store.SeedTodos() {
			seen[it.ID] = true
		}
		for _, text := range []string{"测试任务", "second", "third"} {
			it, err := s.CreateTodo(ctx, text)
			require.NoError(t, err)
			assert.False(t, it.Completed)
			assert.Equal(t, text, it.Text)
			assert.False(t, seen[it.ID], "id %d reused", it.ID)
			seen[it.ID] = true
		}

		_, err := s.CreateTodo(ctx, "   ")
		assert.ErrorIs(t, err, apierr.ErrValidation)
	})
}

func TestIDsNotReusedAfterDelete(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		it, err := s.CreateTodo(ctx, "temp")
		require.NoError(t, err)
		require.NoError(t, s.DeleteTodo(ctx, it.ID))

		next, err := s.CreateTodo(ctx, "after")
		require.NoError(t, err)
		assert.Greater(t, next.ID, it.ID)
	})
}

func TestToggleRoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		orig := store.SeedTodos()[0]

		on, err := s.UpdateTodo(ctx, orig.ID, model.CompletedPatch(true))
		require.NoError(t, err)
		assert.True(t, on.Completed)

		off, err := s.UpdateTodo(ctx, orig.ID, model.CompletedPatch(false))
		require.NoError(t, err)
		assert.Equal(t, orig, off)
	})
}

func TestUpdateErrors(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		_, err := s.UpdateTodo(ctx, 999, model.CompletedPatch(true))
		assert.ErrorIs(t, err, apierr.ErrNotFound)

		empty := ""
		_, err = s.UpdateTodo(ctx, 1, model.TodoPatch{Text: &empty})
		assert.ErrorIs(t, err, apierr.ErrValidation)
	})
}

func TestDeleteThenList(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		require.NoError(t, s.DeleteTodo(ctx, 2))
		// Missing ids are not an error.
		require.NoError(t, s.DeleteTodo(ctx, 2))

		todos, err := s.ListTodos(ctx)
		require.NoError(t, err)
		for _, it := range todos {
			assert.NotEqual(t, int64(2), it.ID)
		}
		assert.Len(t, todos, 2)
	})
}

func TestJSONStoreReopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "oadesk.json")
	s, err := jsonstore.Open(path)
	require.NoError(t, err)
	created, err := s.CreateTodo(ctx, "persisted")
	require.NoError(t, err)
	require.NoError(t, s.DeleteTodo(ctx, 1))

	again, err := jsonstore.Open(path)
	require.NoError(t, err)
	todos, err := again.ListTodos(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 3)
	assert.Equal(t, created, todos[2])

	next, err := again.CreateTodo(ctx, "next")
	require.NoError(t, err)
	assert.Greater(t, next.ID, created.ID)
}

func TestJSONStoreFailedWriteKeepsTables(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "oadesk.json")
	s, err := jsonstore.Open(path)
	require.NoError(t, err)

	// A directory in place of the data file makes every write fail.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o700))

	_, err = s.CreateTodo(ctx, "lost")
	require.Error(t, err)
	_, err = s.UpdateTodo(ctx, 1, model.CompletedPatch(true))
	require.Error(t, err)
	require.Error(t, s.DeleteTodo(ctx, 1))

	todos, err := s.ListTodos(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(store.SeedTodos(), todos); diff != "" {
		t.Fatalf("failed writes leaked into the tables (-want +got):\n%s", diff)
	}

	require.NoError(t, os.Remove(path))
	it, err := s.CreateTodo(ctx, "after recovery")
	require.NoError(t, err)
	assert.Equal(t, int64(4), it.ID)

	again, err := jsonstore.Open(path)
	require.NoError(t, err)
	todos, err = again.ListTodos(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 4)
	assert.Equal(t, it, todos[3])
}

func TestSQLiteReopenKeepsDeletes(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "oadesk.db")
	s, err := sqlitestore.Open(ctx, path)
	require.NoError(t, err)
	for _, it := range store.SeedTodos() {
		require.NoError(t, s.DeleteTodo(ctx, it.ID))
	}
	require.NoError(t, s.Close())

	again, err := sqlitestore.Open(ctx, path)
	require.NoError(t, err)
	defer again.Close()
	todos, err := again.ListTodos(ctx)
	require.NoError(t, err)
	assert.Empty(t, todos, "seed must not be re-applied once the table was used")
}

func TestDataPath(t *testing.T) {
	p, err := jsonstore.DataPath("/tmp/x")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/x", "oadesk.json"), p)
}
