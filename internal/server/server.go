// Package server is the HTTP shell around the transpiler core. It owns
// transport concerns only: routing, JSON (de)serialization, request
// logging and error-to-status mapping. The core performs no I/O of its
// own, so concurrent requests need no coordination.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/blockquest/blockgen/pkgs/engine"
	blockerrors "github.com/blockquest/blockgen/pkgs/errors"
	"github.com/blockquest/blockgen/pkgs/level"
)

const (
	serviceName    = "blockgen-api"
	serviceVersion = "1.0"

	// maxRequestBytes bounds pathological payloads at the service boundary;
	// the core itself accepts trees of any size.
	maxRequestBytes = 1 << 20
)

// Server serves the generate/list operations over HTTP.
type Server struct {
	logger *slog.Logger
}

// New creates a server that logs to the provided logger.
func New(logger *slog.Logger) *Server {
	return &Server{logger: logger}
}

type generateRequest struct {
	Blocks json.RawMessage `json:"blocks"`
	Level  int             `json:"level"`
}

type generateResponse struct {
	Success     bool   `json:"success"`
	Code        string `json:"code"`
	Fingerprint string `json:"fingerprint"`
	Level       int    `json:"level"`
}

type commandsResponse struct {
	Success  bool               `json:"success"`
	Level    int                `json:"level"`
	Commands []level.Descriptor `json:"commands"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate-code", s.handleGenerate)
	mux.HandleFunc("GET /available-commands", s.handleAvailableCommands)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /test-loop", s.handleTestLoop)
	return s.logRequests(mux)
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "address", fmt.Sprintf("http://localhost%s", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, blockerrors.NewDecodeError("request body is not valid JSON", err))
		return
	}

	if len(req.Blocks) == 0 || string(req.Blocks) == "null" || string(req.Blocks) == "[]" {
		s.writeError(w, http.StatusBadRequest, blockerrors.New(blockerrors.ErrInputDecode, "no blocks provided"))
		return
	}

	result, err := engine.GenerateJSON(req.Blocks, req.Level)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	s.logger.Debug("rendered program",
		"fingerprint", result.Fingerprint,
		"level", req.Level,
		"lines", len(result.Lines))

	s.writeJSON(w, http.StatusOK, generateResponse{
		Success:     true,
		Code:        result.Text(),
		Fingerprint: result.Fingerprint,
		Level:       result.Level,
	})
}

func (s *Server) handleAvailableCommands(w http.ResponseWriter, r *http.Request) {
	lvl := 1
	if raw := r.URL.Query().Get("level"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest,
				blockerrors.NewDecodeError(fmt.Sprintf("invalid level %q", raw), err))
			return
		}
		lvl = parsed
	}

	s.writeJSON(w, http.StatusOK, commandsResponse{
		Success:  true,
		Level:    lvl,
		Commands: engine.ListCommands(lvl),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// handleTestLoop renders a canned square-path loop, useful for checking
// the API end to end without a frontend.
func (s *Server) handleTestLoop(w http.ResponseWriter, r *http.Request) {
	blocks := []byte(`[
		{"type": "loop", "params": {
			"iterations": 4,
			"body": [
				{"type": "move_forward", "params": {"distance": 1}},
				{"type": "turn_right", "params": {"degrees": 90}}
			]
		}}
	]`)

	result, err := engine.GenerateJSON(blocks, 4)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"example":     "Square path loop",
		"blocks":      json.RawMessage(blocks),
		"code":        result.Text(),
		"fingerprint": result.Fingerprint,
	})
}

// statusFor maps core errors to transport statuses: boundary decode
// failures are the client's payload shape (400), render failures are
// semantically invalid programs (422).
func statusFor(err error) int {
	var blockErr *blockerrors.BlockError
	if !errors.As(err, &blockErr) {
		return http.StatusInternalServerError
	}
	switch blockErr.Type {
	case blockerrors.ErrInputRead, blockerrors.ErrInputDecode:
		return http.StatusBadRequest
	case blockerrors.ErrUnknownCommandType, blockerrors.ErrMissingParameter, blockerrors.ErrMalformedBody:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Success: false, Error: err.Error()}
	var blockErr *blockerrors.BlockError
	if errors.As(err, &blockErr) {
		resp.Code = blockErr.Type
	}
	s.logger.Warn("request failed", "status", status, "error", err)
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration", time.Since(start))
	})
}
