// Package server exposes the annotation pipeline over HTTP and WebSocket.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"

	"github.com/lenslate/lenslate/internal/config"
	"github.com/lenslate/lenslate/internal/pipeline"
)

// Server holds the HTTP server state and its annotation engine.
type Server struct {
	engine *pipeline.Engine
	cfg    config.ServerConfig
	logger *slog.Logger

	source language.Tag
	target language.Tag

	httpServer *http.Server
}

// New creates a server around an engine. The translate config supplies the
// default language pair; requests may override it.
func New(engine *pipeline.Engine, cfg config.ServerConfig, tr config.TranslateConfig, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("nil engine")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{engine: engine, cfg: cfg, logger: logger}

	var err error
	if tr.Source != "" {
		if s.source, err = language.Parse(tr.Source); err != nil {
			return nil, fmt.Errorf("parse source language %q: %w", tr.Source, err)
		}
	}
	if tr.Target != "" {
		if s.target, err = language.Parse(tr.Target); err != nil {
			return nil, fmt.Errorf("parse target language %q: %w", tr.Target, err)
		}
	}
	return s, nil
}

// SetupRoutes registers all handlers on mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.instrument(s.healthHandler))
	mux.HandleFunc("/annotate", s.instrument(s.annotateHandler))
	mux.HandleFunc("/ws", s.websocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// ListenAndServe starts the server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(s.cfg.TimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// parseTagInto overwrites dst with the parsed tag when v is non-empty.
func parseTagInto(v string, dst *language.Tag) error {
	if v == "" {
		return nil
	}
	tag, err := language.Parse(v)
	if err != nil {
		return fmt.Errorf("invalid language %q", v)
	}
	*dst = tag
	return nil
}

// requestTimeout returns the per-request processing deadline.
func (s *Server) requestTimeout() time.Duration {
	if s.cfg.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.cfg.TimeoutSeconds) * time.Second
}
