// Package server is the reference JSON backend for the data access layer.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/oadesk/internal/apierr"
	"github.com/idilsaglam/oadesk/internal/assistant"
	"github.com/idilsaglam/oadesk/internal/model"
	"github.com/idilsaglam/oadesk/internal/store"
)

type Config struct {
	Addr string
	// Token, when set, is required as a bearer token on every /api request.
	Token string
}

type Server struct {
	cfg       Config
	store     store.Store
	responder assistant.Responder
	logger    *zap.Logger
}

func New(cfg Config, st store.Store, responder assistant.Responder, logger *zap.Logger) *Server {
	if responder == nil {
		responder = assistant.Scripted{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{cfg: cfg, store: st, responder: responder, logger: logger}
}

// Handler returns the routed API with request-id, logging and auth middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/todos", s.handleListTodos)
	mux.HandleFunc("POST /api/todos", s.handleCreateTodo)
	mux.HandleFunc("PATCH /api/todos/{id}", s.handleUpdateTodo)
	mux.HandleFunc("DELETE /api/todos/{id}", s.handleDeleteTodo)
	mux.HandleFunc("GET /api/announcements", s.handleListAnnouncements)
	mux.HandleFunc("POST /api/ai/chat", s.handleChat)
	return s.withRequestID(s.withLogging(s.withAuth(mux)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type ctxKey struct{}

// RequestID returns the id assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", RequestID(r.Context())))
	})
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token != "" {
			got := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if got != s.cfg.Token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store error kinds onto status codes.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apierr.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apierr.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("store failure",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := s.store.ListTodos(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	it, err := s.store.CreateTodo(r.Context(), body.Text)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var patch model.TodoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	it, err := s.store.UpdateTodo(r.Context(), id, patch)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.store.DeleteTodo(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	anns, err := s.store.ListAnnouncements(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, anns)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string              `json:"message"`
		History []model.ChatMessage `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		writeError(w, http.StatusBadRequest, "message must not be empty")
		return
	}
	reply, err := s.responder.Reply(r.Context(), body.Message, body.History)
	if err != nil {
		s.logger.Error("assistant failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, "assistant unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
