// Package server implements the signing relay's HTTP surface: it verifies
// HMAC-signed payloads from clients and forwards accepted events to GitHub.
// The relay holds no state of its own; a rejected request leaves no trace.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/evolveua/queuevault/internal/logging"
	"github.com/evolveua/queuevault/internal/relay/config"
	"github.com/evolveua/queuevault/internal/relay/github"
	"github.com/evolveua/queuevault/internal/signing"
)

// maxBodyBytes caps the dispatch request body.
const maxBodyBytes = 1 << 20

type Server struct {
	cfg        *config.Config
	dispatcher github.Dispatcher
	logger     logging.Logger
	now        func() time.Time
}

func New(cfg *config.Config, d github.Dispatcher, logger logging.Logger) *Server {
	return &Server{
		cfg:        cfg,
		dispatcher: d,
		logger:     logger.With("module", "relay"),
		now:        time.Now,
	}
}

// Handler builds the chi router. The relay is called from browser-like
// clients, so every response carries permissive CORS headers and the route
// answers preflight requests itself.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsHeaders)

	r.Get("/health", s.handleHealth)
	r.Options(s.cfg.Route, s.handlePreflight)
	r.Post(s.cfg.Route, s.handleDispatch)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Not found"})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "relay listening", "addr", s.cfg.Addr, "route", s.cfg.Route)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, req)
	})
}

func (s *Server) handlePreflight(w http.ResponseWriter, req *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, X-Signature, X-Timestamp")
	h.Set("Access-Control-Max-Age", "86400")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleDispatch is the relay's single write path: decode, verify the
// signature, check freshness, then forward to GitHub. Verification failures
// are logged but never echo the payload back.
func (s *Server) handleDispatch(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	raw, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}
	var sp signing.SignedPayload
	if err := json.Unmarshal(raw, &sp); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}

	// The signature covers exactly {type,data,timestamp}. Any other field
	// besides the signature itself is unsigned input and fails verification.
	for k := range fields {
		switch k {
		case "type", "data", "timestamp", "signature":
		default:
			s.logger.Warn(ctx, "unsigned field in payload", "type", sp.Type, "field", k)
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid signature"})
			return
		}
	}

	if !signing.Verify(sp, []byte(s.cfg.AppSecret)) {
		s.logger.Warn(ctx, "signature verification failed", "type", sp.Type)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid signature"})
		return
	}

	if !signing.CheckTimestamp(s.now(), sp.Timestamp) {
		s.logger.Warn(ctx, "stale payload rejected", "type", sp.Type, "timestamp", sp.Timestamp)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Timestamp expired"})
		return
	}

	clientPayload := map[string]any{}
	if len(sp.Data) > 0 {
		if err := json.Unmarshal(sp.Data, &clientPayload); err != nil {
			clientPayload = map[string]any{}
		}
	}
	clientPayload["submitted_at"] = time.UnixMilli(sp.Timestamp).UTC().Format(time.RFC3339)

	if err := s.dispatcher.Dispatch(ctx, sp.Type, clientPayload); err != nil {
		s.logger.Error(ctx, "dispatch failed", "type", sp.Type, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	s.logger.Info(ctx, "event dispatched", "type", sp.Type)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Event sent to GitHub"})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
