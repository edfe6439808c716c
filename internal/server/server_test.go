package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/oadesk/internal/model"
	"github.com/idilsaglam/oadesk/internal/store"
)

func newTestHandler(cfg Config) http.Handler {
	return New(cfg, store.NewMemory(), nil, nil).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTodoRoutes(t *testing.T) {
	h := newTestHandler(Config{})

	rec := do(t, h, http.MethodGet, "/api/todos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var todos []model.TodoItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todos))
	assert.Len(t, todos, 3)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, h, http.MethodPost, "/api/todos", map[string]string{"text": "测试任务"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.TodoItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(4), created.ID)
	assert.False(t, created.Completed)

	rec = do(t, h, http.MethodPatch, "/api/todos/4", map[string]bool{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.TodoItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "测试任务", updated.Text)

	rec = do(t, h, http.MethodDelete, "/api/todos/4", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/todos/4", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTodoRouteErrors(t *testing.T) {
	h := newTestHandler(Config{})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"empty text", http.MethodPost, "/api/todos", map[string]string{"text": ""}, http.StatusBadRequest},
		{"missing id", http.MethodPatch, "/api/todos/99", map[string]bool{"completed": true}, http.StatusNotFound},
		{"bad id", http.MethodPatch, "/api/todos/abc", map[string]bool{"completed": true}, http.StatusBadRequest},
		{"bad delete id", http.MethodDelete, "/api/todos/-1", nil, http.StatusBadRequest},
		{"empty chat", http.MethodPost, "/api/ai/chat", map[string]string{"message": " "}, http.StatusBadRequest},
		{"wrong method", http.MethodPut, "/api/todos", nil, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestInvalidJSON(t *testing.T) {
	h := newTestHandler(Config{})
	req := httptest.NewRequest(http.MethodPost, "/api/todos", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON body")
}

func TestAnnouncementsAndChat(t *testing.T) {
	h := newTestHandler(Config{})

	rec := do(t, h, http.MethodGet, "/api/announcements", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var anns []model.Announcement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &anns))
	require.Len(t, anns, 2)
	assert.Equal(t, "行政部", anns[0].Author)

	rec = do(t, h, http.MethodPost, "/api/ai/chat", map[string]string{"message": "你好"})
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Reply string `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Reply, "你好")
}

func TestTokenRequired(t *testing.T) {
	h := newTestHandler(Config{Token: "s3cret"})

	rec := do(t, h, http.MethodGet, "/api/todos", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDPropagates(t *testing.T) {
	h := newTestHandler(Config{})
	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(Config{}, store.NewMemory(), nil, nil).Serve(ctx, ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/todos")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
