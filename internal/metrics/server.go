package metrics

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the collector's panels over HTTP when proxytop runs with
// -metrics. Scrapes read whatever the update loop last pushed; the server
// never touches the admin interface itself.
type Server struct {
	addr   string
	srv    *http.Server
	logger *slog.Logger
}

// exporterMux routes the exporter's two endpoints: the Prometheus scrape
// handler and a liveness probe.
func exporterMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok\n")
	})
	return mux
}

// NewServer creates the exporter on addr. Call Start to begin serving.
func NewServer(addr string, logger *slog.Logger) *Server {
	return &Server{
		addr:   addr,
		logger: logger,
		srv: &http.Server{
			Addr:              addr,
			Handler:           exporterMux(),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       30 * time.Second,
		},
	}
}

// Start serves in a goroutine and returns immediately; the TUI keeps the
// foreground. Use Shutdown to stop.
func (s *Server) Start() error {
	s.logger.Info("exporter_listening", "addr", s.addr)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("exporter_failed", "error", err)
		}
	}()
	return nil
}

// Shutdown drains in-flight scrapes and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Debug("exporter_stopping")
	return s.srv.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}
