package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/dms-converter-service/internal/domain"
	"github.com/couchcryptid/dms-converter-service/internal/service"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxRequestBytes = 64 << 10

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker = sharedobs.ReadinessChecker

// Server exposes the conversion API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	converter  *service.Converter
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /v1/convert, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, ready ReadinessChecker, converter *service.Converter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		converter: converter,
		logger:    logger,
	}

	mux.HandleFunc("GET /v1/convert", s.handleConvertQuery)
	mux.HandleFunc("POST /v1/convert", s.handleConvertBody)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleConvertQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		s.writeRejection(w, errors.New("missing query parameter q"))
		return
	}
	s.writeResult(w, s.converter.Convert(r.Context(), service.SurfaceHTTP, domain.ConversionRequest{Input: q}))
}

func (s *Server) handleConvertBody(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		s.writeRejection(w, err)
		return
	}
	req, err := domain.DecodeRequest(body)
	if err != nil {
		s.writeRejection(w, err)
		return
	}
	s.writeResult(w, s.converter.Convert(r.Context(), service.SurfaceHTTP, req))
}

func (s *Server) writeResult(w http.ResponseWriter, result domain.ConversionResult) {
	status := http.StatusOK
	if result.Error != nil {
		status = http.StatusUnprocessableEntity
	}
	sharedobs.WriteJSON(w, status, result)
}

func (s *Server) writeRejection(w http.ResponseWriter, err error) {
	s.logger.Debug("http request rejected", "error", err)
	sharedobs.WriteJSON(w, http.StatusBadRequest, s.converter.Reject(service.SurfaceHTTP, err))
}
