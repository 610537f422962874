// Package server exposes tutoring sessions over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/studychat/internal/catalog"
	"github.com/abhisek/studychat/internal/tutor"
)

// Server holds the live sessions. The registry is the only state shared
// between requests; each session serialises its own turns.
type Server struct {
	// IdleTTL evicts sessions untouched for longer than this while Run is
	// serving. Zero keeps sessions until they are deleted.
	IdleTTL time.Duration

	orch       *tutor.Orchestrator
	loader     catalog.Loader
	exportsDir string
	logger     *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	session  *tutor.Session
	lastUsed time.Time // guarded by Server.mu
}

// New creates a Server. Artifacts are served from exportsDir.
func New(orch *tutor.Orchestrator, loader catalog.Loader, exportsDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		orch:       orch,
		loader:     loader,
		exportsDir: exportsDir,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*entry),
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/lessons", s.handleLessons)
	r.Post("/sessions", s.handleCreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Delete("/", s.handleDeleteSession)
		r.Post("/messages", s.handleMessage)
		r.Post("/lessons/{lessonID}", s.handleStartLesson)
	})
	r.Get("/exports/{name}", s.handleExport)
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
		// Replies are streamed, so there is no write timeout.
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	if s.IdleTTL > 0 {
		go s.evictIdle(ctx, s.IdleTTL/2)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// lookup returns the session entry and marks it used.
func (s *Server) lookup(id string) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if ok {
		e.lastUsed = s.now()
	}
	return e, ok
}

func (s *Server) evictIdle(ctx context.Context, every time.Duration) {
	if every < time.Second {
		every = time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sweep(s.now()); n > 0 {
				s.logger.Info("evicted idle sessions", "count", n)
			}
		}
	}
}

// sweep drops sessions idle for longer than IdleTTL. Sessions in the middle
// of a turn are kept. It returns the number evicted.
func (s *Server) sweep(now time.Time) int {
	if s.IdleTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastUsed) <= s.IdleTTL || !e.mu.TryLock() {
			continue
		}
		delete(s.sessions, id)
		e.mu.Unlock()
		evicted++
	}
	return evicted
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type lessonSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
	Steps       int    `json:"steps"`
}

func (s *Server) handleLessons(w http.ResponseWriter, _ *http.Request) {
	out := []lessonSummary{}
	if s.loader != nil {
		for _, l := range s.loader.Load().Sorted() {
			out = append(out, lessonSummary{
				ID:          l.ID,
				Title:       l.DisplayTitle(),
				Description: l.Description,
				Version:     l.Version,
				Steps:       len(l.Steps),
			})
		}
	}
	JSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := tutor.NewSession(s.orch)

	s.mu.Lock()
	s.sessions[sess.ID] = &entry{session: sess, lastUsed: s.now()}
	s.mu.Unlock()

	s.logger.Info("session created", "session", sess.ID)
	JSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	JSON(w, http.StatusOK, e.session.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	s.logger.Info("session deleted", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

type messageRequest struct {
	Text string `json:"text"`
}

type turnResponse struct {
	Result      tutor.TurnResult `json:"result"`
	ExportError string           `json:"export_error,omitempty"`
	Transcript  tutor.Transcript `json:"transcript"`
}

// handleMessage runs one turn. With "Accept: text/event-stream" the reply is
// streamed as "fragment" events followed by a final "done" event.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusNotFound, "session not found")
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Checked before the stream opens so a blank message is a 400 either way.
	if strings.TrimSpace(req.Text) == "" {
		Error(w, http.StatusBadRequest, tutor.ErrEmptyMessage.Error())
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		s.streamTurn(w, r, e.session, req.Text)
		return
	}

	res, err := e.session.Submit(r.Context(), req.Text, nil)
	if err != nil {
		s.turnError(w, e.session, err)
		return
	}
	JSON(w, http.StatusOK, newTurnResponse(res, e.session))
}

func (s *Server) streamTurn(w http.ResponseWriter, r *http.Request, sess *tutor.Session, text string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(event string, v any) {
		data, err := json.Marshal(v)
		if err != nil {
			s.logger.Warn("failed to encode event", "event", event, "error", err)
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}

	res, err := sess.Submit(r.Context(), text, func(fragment string) {
		send("fragment", map[string]string{"text": fragment})
	})
	if err != nil {
		s.logger.Warn("turn failed", "session", sess.ID, "error", err)
		send("error", map[string]string{"error": err.Error()})
		return
	}
	send("done", newTurnResponse(res, sess))
}

func (s *Server) turnError(w http.ResponseWriter, sess *tutor.Session, err error) {
	if errors.Is(err, tutor.ErrEmptyMessage) {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Warn("turn failed", "session", sess.ID, "error", err)
	Error(w, http.StatusBadGateway, err.Error())
}

func newTurnResponse(res tutor.TurnResult, sess *tutor.Session) turnResponse {
	out := turnResponse{Result: res, Transcript: sess.Snapshot()}
	if res.ExportErr != nil {
		out.ExportError = res.ExportErr.Error()
	}
	return out
}

type startLessonResponse struct {
	Kickoff    string           `json:"kickoff"`
	Transcript tutor.Transcript `json:"transcript"`
}

func (s *Server) handleStartLesson(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusNotFound, "session not found")
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	kickoff, err := e.session.StartLesson(r.Context(), chi.URLParam(r, "lessonID"))
	if errors.Is(err, tutor.ErrUnknownLesson) {
		Error(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	JSON(w, http.StatusOK, startLessonResponse{Kickoff: kickoff, Transcript: e.session.Snapshot()})
}

// handleExport serves a generated deck by file name. Only plain Markdown
// file names inside the exports directory are accepted.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".md" {
		Error(w, http.StatusBadRequest, "invalid artifact name")
		return
	}

	path := filepath.Join(s.exportsDir, name)
	if _, err := os.Stat(path); err != nil {
		Error(w, http.StatusNotFound, "artifact not found")
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chiMiddleware.GetReqID(r.Context()),
			)
		})
	}
}
