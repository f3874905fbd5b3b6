// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the router over HTTP.
//
// Endpoints:
//   - POST /api/v1/pokemon/chat    answer a free-text message
//   - GET  /api/v1/pokemon/battle  compare two named entities
//   - GET  /api/v1/pokemon/health  liveness
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/pokerouter/internal/logging"
	"github.com/pdiddy/pokerouter/internal/router"
	"github.com/pdiddy/pokerouter/pkg/types"
)

const (
	// Prefix is the path prefix of every API route.
	Prefix = "/api/v1/pokemon"

	// MaxRequestBodySize bounds the chat request body (1 MiB).
	MaxRequestBodySize = 1 << 20

	// Entity name bounds on the battle endpoint.
	minNameLen = 2
	maxNameLen = 50

	defaultAddr            = ":8000"
	defaultShutdownTimeout = 10 * time.Second
)

// Router is the part of *router.Router the handlers use.
type Router interface {
	Route(ctx context.Context, message string) (*types.ChatResponse, error)
	Compare(ctx context.Context, first, second string) (*types.CompareResponse, error)
}

// Server serves the HTTP API.
type Server struct {
	cfg    types.ServerConfig
	router Router
	log    *slog.Logger
	mux    *http.ServeMux
	srv    *http.Server
}

// New returns a Server routing requests through rt.
func New(cfg types.ServerConfig, rt Router, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	s := &Server{cfg: cfg, router: rt, log: log, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST "+Prefix+"/chat", s.handleChat)
	s.mux.HandleFunc("GET "+Prefix+"/battle", s.handleBattle)
	s.mux.HandleFunc("GET "+Prefix+"/health", s.handleHealth)
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(
		RequestIDMiddleware(),
		LoggingMiddleware(s.log),
		RecoveryMiddleware(s.log),
		CORSMiddleware(),
	)(s.mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", s.cfg.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", MaxRequestBodySize))
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusUnprocessableEntity, "message is required")
		return
	}

	// Routing continues if the client disconnects; the request log records the outcome.
	resp, err := s.router.Route(context.WithoutCancel(r.Context()), req.Message)
	if err != nil {
		logging.ForRequest(r.Context(), s.log).Error("chat failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred while processing the request: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBattle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	first, second := q.Get("pokemon1"), q.Get("pokemon2")
	for _, p := range [][2]string{{"pokemon1", first}, {"pokemon2", second}} {
		if msg := validateName(p[0], p[1]); msg != "" {
			writeError(w, http.StatusUnprocessableEntity, msg)
			return
		}
	}

	resp, err := s.router.Compare(context.WithoutCancel(r.Context()), first, second)
	if err != nil {
		var lf *router.LookupFailure
		if errors.As(err, &lf) {
			writeError(w, http.StatusNotFound, lf.Error())
			return
		}
		logging.ForRequest(r.Context(), s.log).Error("battle failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred while analyzing the battle: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func validateName(param, v string) string {
	n := len([]rune(v))
	switch {
	case n == 0:
		return param + " is required"
	case n < minNameLen:
		return fmt.Sprintf("%s must be at least %d characters", param, minNameLen)
	case n > maxNameLen:
		return fmt.Sprintf("%s must be at most %d characters", param, maxNameLen)
	}
	return ""
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Pokemon API is running",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
