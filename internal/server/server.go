// Package server exposes a wizard session to a browser on the local machine.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/genia-lsp/genia/internal/artifact"
	"github.com/genia-lsp/genia/internal/autolisp"
	"github.com/genia-lsp/genia/internal/generate"
	"github.com/genia-lsp/genia/internal/log"
	"github.com/genia-lsp/genia/internal/wizard"
)

// DefaultAddr binds to loopback only; the server is single-user.
const DefaultAddr = "127.0.0.1:8787"

// maxBodyBytes caps request bodies. Prompts are short.
const maxBodyBytes = 64 << 10

//go:embed index.html
var indexHTML []byte

// Server serves the embedded page and the JSON API around one session.
type Server struct {
	session *wizard.Session
	logger  log.Logger
	mux     *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New creates a server for session.
func New(session *wizard.Session, opts ...Option) *Server {
	s := &Server{
		session: session,
		logger:  log.Default(),
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("POST /api/key", s.handleKey)
	s.mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("POST /api/confirm", s.handleConfirm)
	s.mux.HandleFunc("POST /api/back", s.handleBack)
	s.mux.HandleFunc("POST /api/reset", s.handleReset)
	s.mux.HandleFunc("GET /api/download", s.handleDownload)

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully. ready, when non-nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("server listening", "addr", ln.Addr().String())
	if ready != nil {
		ready(ln.Addr())
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type keyBody struct {
	APIKey string `json:"api_key"`
}

type analyzeBody struct {
	Prompt string `json:"prompt"`
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var body keyBody
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.session.SaveKey(body.APIKey); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body analyzeBody
	if !s.decode(w, r, &body) {
		return
	}
	snap, err := s.session.Analyze(r.Context(), body.Prompt)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleConfirm(w http.ResponseWriter, _ *http.Request) {
	s.respond(w)(s.session.Confirm())
}

func (s *Server) handleBack(w http.ResponseWriter, _ *http.Request) {
	s.respond(w)(s.session.Back())
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.respond(w)(s.session.Reset())
}

func (s *Server) handleDownload(w http.ResponseWriter, _ *http.Request) {
	code := s.session.Code()
	if code == "" {
		s.writeError(w, wizard.ErrWrongStep)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", autolisp.FileName(code)))
	_, _ = io.WriteString(w, code)
}

// respond adapts a session action's (snapshot, error) pair.
func (s *Server) respond(w http.ResponseWriter) func(wizard.Snapshot, error) {
	return func(snap wizard.Snapshot, err error) {
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error: "invalid JSON body: " + err.Error(),
			Kind:  generate.KindInvalidInput.String(),
		})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, kind := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("request failed", "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: kind})
}

// classify maps an error to an HTTP status and a kind label.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, wizard.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, wizard.ErrWrongStep):
		return http.StatusConflict, "wrong_step"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "canceled"
	}

	kind := generate.KindOf(err)
	switch kind {
	case generate.KindInvalidInput, generate.KindExtractionFailure:
		return http.StatusBadRequest, kind.String()
	case generate.KindAuth:
		return http.StatusUnauthorized, kind.String()
	case generate.KindQuota:
		return http.StatusTooManyRequests, kind.String()
	case generate.KindUnavailable, generate.KindEmptyResponse:
		return http.StatusBadGateway, kind.String()
	}
	return http.StatusInternalServerError, kind.String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
