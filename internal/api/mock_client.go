package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/idilsaglam/oadesk/internal/apierr"
	"github.com/idilsaglam/oadesk/internal/assistant"
	"github.com/idilsaglam/oadesk/internal/model"
	"github.com/idilsaglam/oadesk/internal/store"
)

// DefaultLatency is the simulated round trip per operation.
var DefaultLatency = map[Op]time.Duration{
	OpListTodos:         500 * time.Millisecond,
	OpCreateTodo:        300 * time.Millisecond,
	OpUpdateTodo:        300 * time.Millisecond,
	OpDeleteTodo:        300 * time.Millisecond,
	OpListAnnouncements: 500 * time.Millisecond,
	OpSendChat:          1000 * time.Millisecond,
}

// MockClient serves canned tables behind artificial delays so loading
// states are visible during development.
type MockClient struct {
	store     store.Store
	responder assistant.Responder
	scale     float64
	logger    *zap.Logger

	mu   sync.Mutex
	fail map[Op]error
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)

// MockOption configures a MockClient
type MockOption func(*MockClient)

// WithStore replaces the seeded in-memory tables.
func WithStore(s store.Store) MockOption {
	return func(c *MockClient) { c.store = s }
}

// WithLatencyScale multiplies every simulated delay; 0 disables them.
func WithLatencyScale(scale float64) MockOption {
	return func(c *MockClient) { c.scale = scale }
}

// WithResponder replaces the scripted chat responder.
func WithResponder(r assistant.Responder) MockOption {
	return func(c *MockClient) { c.responder = r }
}

// WithMockLogger sets the logger
func WithMockLogger(l *zap.Logger) MockOption {
	return func(c *MockClient) { c.logger = l }
}

// NewMockClient creates a MockClient over a freshly seeded Memory store.
func NewMockClient(opts ...MockOption) *MockClient {
	c := &MockClient{
		store:     store.NewMemory(),
		responder: assistant.Scripted{},
		scale:     1,
		logger:    zap.NewNop(),
		fail:      map[Op]error{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FailWith makes op fail with a FetchError wrapping err until cleared with nil.
func (c *MockClient) FailWith(op Op, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.fail, op)
		return
	}
	c.fail[op] = err
}

// wait sleeps for the simulated latency of op, then reports any injected failure.
func (c *MockClient) wait(ctx context.Context, op Op) error {
	c.logger.Debug("mock call", zap.String("op", string(op)))
	if d := time.Duration(float64(DefaultLatency[op]) * c.scale); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return apierr.NewFetchError(string(op), 0, ctx.Err())
		case <-t.C:
		}
	}
	c.mu.Lock()
	err := c.fail[op]
	c.mu.Unlock()
	if err != nil {
		return apierr.NewFetchError(string(op), 0, err)
	}
	return nil
}

func (c *MockClient) ListTodos(ctx context.Context) ([]model.TodoItem, error) {
	if err := c.wait(ctx, OpListTodos); err != nil {
		return nil, err
	}
	return c.store.ListTodos(ctx)
}

func (c *MockClient) CreateTodo(ctx context.Context, text string) (model.TodoItem, error) {
	if err := c.wait(ctx, OpCreateTodo); err != nil {
		return model.TodoItem{}, err
	}
	return c.store.CreateTodo(ctx, text)
}

func (c *MockClient) UpdateTodo(ctx context.Context, id int64, patch model.TodoPatch) (model.TodoItem, error) {
	if err := c.wait(ctx, OpUpdateTodo); err != nil {
		return model.TodoItem{}, err
	}
	return c.store.UpdateTodo(ctx, id, patch)
}

func (c *MockClient) DeleteTodo(ctx context.Context, id int64) error {
	if err := c.wait(ctx, OpDeleteTodo); err != nil {
		return err
	}
	return c.store.DeleteTodo(ctx, id)
}

func (c *MockClient) ListAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	if err := c.wait(ctx, OpListAnnouncements); err != nil {
		return nil, err
	}
	return c.store.ListAnnouncements(ctx)
}

func (c *MockClient) SendChatMessage(ctx context.Context, text string, history []model.ChatMessage) (string, error) {
	if err := c.wait(ctx, OpSendChat); err != nil {
		return "", err
	}
	return c.responder.Reply(ctx, text, history)
}
