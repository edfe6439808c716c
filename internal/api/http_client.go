package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/idilsaglam/oadesk/internal/apierr"
	"github.com/idilsaglam/oadesk/internal/model"
)

// HTTPClient talks to the JSON backend under baseURL + "/api".
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)

// HTTPOption configures an HTTPClient
type HTTPOption func(*HTTPClient)

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) HTTPOption {
	return func(c *HTTPClient) { c.token = token }
}

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying *http.Client
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) HTTPOption {
	return func(c *HTTPClient) { c.logger = l }
}

// NewHTTPClient creates an HTTPClient for the backend at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	op     Op
	method string
	path   string
	body   any
	// itemID is set on /api/todos/{id} routes so 404 maps to NotFoundError.
	itemID int64
}

// do performs r and returns the raw body of a 2xx response.
func (c *HTTPClient) do(ctx context.Context, r request) ([]byte, error) {
	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", r.op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return nil, apierr.NewFetchError(string(r.op), 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("op", string(r.op)), zap.Error(err))
		return nil, apierr.NewFetchError(string(r.op), 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.NewFetchError(string(r.op), 0, err)
	}
	c.logger.Debug("request done",
		zap.String("op", string(r.op)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}
	msg := gjson.GetBytes(data, "error").String()
	switch {
	case resp.StatusCode == http.StatusNotFound && r.itemID != 0:
		return nil, apierr.NewNotFoundError("todo", r.itemID)
	case resp.StatusCode == http.StatusBadRequest:
		if msg == "" {
			msg = "rejected by server"
		}
		return nil, apierr.NewValidationError("", msg)
	}
	return nil, apierr.NewFetchError(string(r.op), resp.StatusCode, nil)
}

func (c *HTTPClient) decode(op Op, data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return apierr.NewFetchError(string(op), 0, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func todoPath(id int64) string {
	return "/api/todos/" + strconv.FormatInt(id, 10)
}

func (c *HTTPClient) ListTodos(ctx context.Context) ([]model.TodoItem, error) {
	data, err := c.do(ctx, request{op: OpListTodos, method: http.MethodGet, path: "/api/todos"})
	if err != nil {
		return nil, err
	}
	var out []model.TodoItem
	if err := c.decode(OpListTodos, data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateTodo(ctx context.Context, text string) (model.TodoItem, error) {
	var out model.TodoItem
	if strings.TrimSpace(text) == "" {
		return out, apierr.NewValidationError("text", "must not be empty")
	}
	data, err := c.do(ctx, request{
		op: OpCreateTodo, method: http.MethodPost, path: "/api/todos",
		body: map[string]string{"text": text},
	})
	if err != nil {
		return out, err
	}
	err = c.decode(OpCreateTodo, data, &out)
	return out, err
}

func (c *HTTPClient) UpdateTodo(ctx context.Context, id int64, patch model.TodoPatch) (model.TodoItem, error) {
	var out model.TodoItem
	data, err := c.do(ctx, request{
		op: OpUpdateTodo, method: http.MethodPatch, path: todoPath(id),
		body: patch, itemID: id,
	})
	if err != nil {
		return out, err
	}
	err = c.decode(OpUpdateTodo, data, &out)
	return out, err
}

func (c *HTTPClient) DeleteTodo(ctx context.Context, id int64) error {
	_, err := c.do(ctx, request{op: OpDeleteTodo, method: http.MethodDelete, path: todoPath(id), itemID: id})
	if errors.Is(err, apierr.ErrNotFound) {
		// Already gone; deleting is idempotent on every backend.
		return nil
	}
	return err
}

func (c *HTTPClient) ListAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	data, err := c.do(ctx, request{op: OpListAnnouncements, method: http.MethodGet, path: "/api/announcements"})
	if err != nil {
		return nil, err
	}
	var out []model.Announcement
	if err := c.decode(OpListAnnouncements, data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChatRequest is the body of POST /api/ai/chat.
type ChatRequest struct {
	Message string              `json:"message"`
	History []model.ChatMessage `json:"history,omitempty"`
}

func (c *HTTPClient) SendChatMessage(ctx context.Context, text string, history []model.ChatMessage) (string, error) {
	data, err := c.do(ctx, request{
		op: OpSendChat, method: http.MethodPost, path: "/api/ai/chat",
		body: ChatRequest{Message: text, History: history},
	})
	if err != nil {
		return "", err
	}
	reply := gjson.GetBytes(data, "reply")
	if !reply.Exists() || reply.Type != gjson.String {
		return "", apierr.NewFetchError(string(OpSendChat), 0, fmt.Errorf("response has no reply"))
	}
	return reply.String(), nil
}
